// Package iam authenticates marketplace buyers for the chat API.
//
// Buyers arrive with an access token minted by the marketplace's login
// flow. The iam/auth sub-package validates that JWT, turns its claims into a
// kernel.AuthContext and guards routes by scope:
//
//   - iam/auth         JWT service, Fiber middleware, audit port
//   - iam/auth/authinfra  logx-backed audit trail
//   - iam/scopes       scope names used by the chat routes
package iam
