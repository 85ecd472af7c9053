package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleCustomer UserRole = "CUSTOMER"
	UserRoleDriver   UserRole = "DRIVER"
	UserRoleAdmin    UserRole = "ADMIN"
)

type Principal struct {
	UserID uuid.UUID
	Role   UserRole
}

func (p Principal) IsDriver() bool {
	return p.Role == UserRoleDriver
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}
