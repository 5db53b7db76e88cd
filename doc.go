// Package accounts provides the credential and token lifecycle of a small
// account service: bcrypt password hashing, single purpose claim tokens,
// authentication strategies and the account transitions that follow them.
//
// Claim tokens:
//   - Every token asserts exactly one claim: authenticated (login), activate
//     (account activation) or passwordReset (credential recovery). A token
//     issued for one purpose is rejected for every other.
//   - Tokens are stateless HS512 JWTs. Expiry is the only bound; there is no
//     revocation list. Any verification failure surfaces as ErrUnauthorized.
//
// Strategies:
//   - PasswordLogin, LoginBearer, ActivationBearer and PasswordResetBearer
//     make up a closed set dispatched by Auther.Authenticate. Only the reset
//     strategy mutates state; activation is applied by Auther.Activate.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther to describe
//     registration, login, activation and password reset events. Sinks run
//     best-effort (errors are logged).
package accounts
