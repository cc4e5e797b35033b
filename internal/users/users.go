// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

/*
Package users implements account management backed by a single JSON file.

The file is an array of user objects shared with older tooling, so its field
names and 4-space indentation are part of the contract. Passwords are stored
hashed; see the sec package for the dual-scheme story.
*/
package users

// User is one account record in the users file.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Icon     string `json:"icon"`
	Role     string `json:"role"`
}

// Bootstrap administrator, created on first login attempt if the users file
// has no such account. The credentials are the historical defaults and should
// be changed on any public deployment.
const (
	bootstrapAdminUsername = "admin"
	bootstrapAdminPassword = "admin123"
)
