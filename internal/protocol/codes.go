/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package protocol

// Code is the uniform status code carried in the "error" field of every
// JSON response body and in the error_code field of every gRPC response.
// Zero always means success; handlers never throw across the wire.
type Code int32

const (
	// CodeSuccess indicates the request was handled.
	CodeSuccess Code = 0

	// CodeJSONParse indicates the request body was not valid JSON or a
	// required field was absent or mistyped.
	CodeJSONParse Code = 1001

	// CodeNetwork indicates a transport-level failure while answering.
	CodeNetwork Code = 1002

	// CodeNotAuthenticated indicates a request that requires a bound uuid
	// arrived on an unauthenticated session.
	CodeNotAuthenticated Code = 1003

	// CodeLoginInternal indicates the login critical path could not complete,
	// including failure to acquire the per-uuid distributed lock or an
	// unacknowledged remote kick. Logins abort rather than proceed.
	CodeLoginInternal Code = 1004

	// CodeInvalidCredentials indicates a bad token or password.
	CodeInvalidCredentials Code = 1005

	// CodeFriendingYourself indicates src_uuid == dst_uuid on a friend
	// operation. Never persisted.
	CodeFriendingYourself Code = 1006

	// CodeUserNotFound indicates the target uuid or username is unknown.
	CodeUserNotFound Code = 1007

	// CodeRedis indicates a presence-store failure visible to the caller.
	CodeRedis Code = 1008

	// CodeMySQL indicates a persistent-store failure visible to the caller.
	CodeMySQL Code = 1009

	// CodeGRPC indicates a cross-server forward failed.
	CodeGRPC Code = 1010

	// CodeFileIO indicates the resources server could not apply a chunk.
	CodeFileIO Code = 1011

	// CodeChunkOutOfOrder indicates a chunk arrived with an unexpected
	// sequence number for its upload.
	CodeChunkOutOfOrder Code = 1012

	// CodeAlreadyLoggedIn indicates a login request on a connection whose
	// session already carries a bound uuid. The client must log out or
	// open a fresh connection before authenticating again.
	CodeAlreadyLoggedIn Code = 1013
)

func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeJSONParse:
		return "json_parse_error"
	case CodeNetwork:
		return "network_error"
	case CodeNotAuthenticated:
		return "not_authenticated"
	case CodeLoginInternal:
		return "login_internal_error"
	case CodeInvalidCredentials:
		return "invalid_credentials"
	case CodeFriendingYourself:
		return "friending_yourself"
	case CodeUserNotFound:
		return "user_not_found"
	case CodeRedis:
		return "redis_error"
	case CodeMySQL:
		return "mysql_error"
	case CodeGRPC:
		return "grpc_error"
	case CodeFileIO:
		return "file_io_error"
	case CodeChunkOutOfOrder:
		return "chunk_out_of_order"
	case CodeAlreadyLoggedIn:
		return "already_logged_in"
	default:
		return "unknown_code"
	}
}
