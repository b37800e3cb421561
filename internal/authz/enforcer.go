// Package authz decides what a role may do, using casbin RBAC with role
// inheritance ADMIN > ORGANIZER > USER. Ownership rules live in the services.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/domain"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Objects.
const (
	ObjectUsers         = "users"
	ObjectEvents        = "events"
	ObjectRegistrations = "registrations"
	ObjectComments      = "comments"
)

// Actions. ActionManage covers acting on records owned by someone else.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionList   = "list"
	ActionManage = "manage"
)

type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("model.NewModelFromString -> %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("casbin.NewSyncedEnforcer -> %w", err)
	}

	if err = loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	return &Enforcer{
		enforcer: enforcer,
	}, nil
}

func MustNewEnforcer() *Enforcer {
	e, err := NewEnforcer()
	if err != nil {
		panic(err)
	}

	return e
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("enforcer.AddPolicy(%v) -> %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("enforcer.AddGroupingPolicy(%v) -> %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}

	return nil
}

// Can reports whether role may perform action on object. Enforcement errors deny.
func (e *Enforcer) Can(role domain.Role, object, action string) bool {
	if !role.IsValid() {
		return false
	}

	allowed, err := e.enforcer.Enforce(string(role), object, action)
	if err != nil {
		zap.L().Error("authorization check failed",
			zap.String("role", string(role)),
			zap.String("object", object),
			zap.String("action", action),
			zap.Error(err),
		)
		return false
	}

	return allowed
}
