package services

import (
	"strings"

	"github.com/Dosada05/medcamp/models"
)

// Capability - одно декларативное требование авторизации.
type Capability interface {
	Allows(caller *models.Caller) bool
	String() string
}

type capability struct {
	name  string
	check func(caller *models.Caller) bool
}

func (c capability) Allows(caller *models.Caller) bool { return caller != nil && c.check(caller) }
func (c capability) String() string                    { return c.name }

var (
	// Authenticated выполняется для любого опознанного вызывающего.
	Authenticated Capability = capability{name: "authenticated", check: func(*models.Caller) bool { return true }}

	// Organizer выполняется для вызывающих с ролью организатора.
	Organizer Capability = capability{name: "organizer", check: (*models.Caller).IsOrganizer}
)

// SelfOwner выполняется, когда email принадлежит вызывающему.
func SelfOwner(email string) Capability {
	return capability{
		name: "self:" + email,
		check: func(c *models.Caller) bool {
			return email != "" && strings.EqualFold(strings.TrimSpace(email), c.Email)
		},
	}
}

// AnyOf выполняется, если выполнено хотя бы одно из caps.
func AnyOf(caps ...Capability) Capability {
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = c.String()
	}
	return capability{
		name: "any(" + strings.Join(names, ",") + ")",
		check: func(c *models.Caller) bool {
			for _, cp := range caps {
				if cp.Allows(c) {
					return true
				}
			}
			return false
		},
	}
}

// Authorize требует выполнения всех caps. Для nil вызывающего всегда
// возвращает ErrUnauthenticated.
func Authorize(caller *models.Caller, caps ...Capability) error {
	if caller == nil || caller.Email == "" {
		return ErrUnauthenticated
	}
	for _, c := range caps {
		if !c.Allows(caller) {
			return ErrForbidden
		}
	}
	return nil
}
