package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/trackpass/internal/common"
	"github.com/dmitrijs2005/trackpass/internal/server/kv"
)

// bootstrapAdmins is the compile-time allow-list. Addresses granted at
// runtime live in the key-value store under kv.AdminsKey; both sets are
// queried through one IsAuthorized check.
var bootstrapAdmins = map[string]struct{}{
	"founders@trackpass.app": {},
}

type adminList struct {
	Emails    []string  `json:"emails"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminPolicy answers "is this email an administrator" and manages the
// dynamic half of the allow-list.
type AdminPolicy struct {
	store kv.Store
}

func NewAdminPolicy(store kv.Store) *AdminPolicy {
	return &AdminPolicy{store: store}
}

// IsAuthorized reports whether email belongs to the bootstrap list or the
// dynamic list. The check fails closed: a storage error is surfaced, not
// treated as absence.
func (p *AdminPolicy) IsAuthorized(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(email)
	if _, ok := bootstrapAdmins[email]; ok {
		return true, nil
	}

	var list adminList
	if err := p.store.Get(ctx, kv.AdminsKey, &list); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}

	for _, e := range list.Emails {
		if strings.EqualFold(e, email) {
			return true, nil
		}
	}
	return false, nil
}

// AddAdmin appends email to the dynamic allow-list. Adding an address that
// is already authorized is a no-op.
func (p *AdminPolicy) AddAdmin(ctx context.Context, email string) error {
	email = strings.ToLower(email)
	if email == "" || !strings.Contains(email, "@") {
		return common.ErrorValidation
	}

	var list adminList
	if err := p.store.Get(ctx, kv.AdminsKey, &list); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	for _, e := range list.Emails {
		if strings.EqualFold(e, email) {
			return nil
		}
	}
	list.Emails = append(list.Emails, email)
	list.UpdatedAt = time.Now()

	return p.store.Set(ctx, kv.AdminsKey, &list)
}

// ListAdmins returns the dynamic allow-list (the bootstrap set is not
// reported; it is part of the binary).
func (p *AdminPolicy) ListAdmins(ctx context.Context) ([]string, error) {
	var list adminList
	if err := p.store.Get(ctx, kv.AdminsKey, &list); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	return list.Emails, nil
}
