// Package auth provides authentication and authorization primitives
// for the postboard API.
//
// This package implements:
//   - HS256 JWT issuing and verification
//   - Role-Based Access Control (RBAC) through a read-only permission table
//   - Password hashing with bcrypt
//
// Every protected route authenticates the caller before its role is
// checked against the permission required by the route.
package auth
