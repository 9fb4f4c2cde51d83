package rbac

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

const (
	ResourceEmployee   = "employee"
	ResourceAttendance = "attendance"
	ResourceSalary     = "salary"
	ResourcePayslip    = "payslip"
)

const (
	// ActionManage berlaku untuk data employee mana pun.
	ActionManage = "manage"
	// ActionReadSelf / ActionWriteSelf hanya untuk data milik caller sendiri.
	ActionReadSelf  = "read_self"
	ActionWriteSelf = "write_self"
)

const modelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// Policy toggles the optional self-service grants.
type Policy struct {
	SelfAttendance bool
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(role, resource, action string) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
}

// NewService builds an in-memory enforcer. Roles are fixed per employee
// record, so the policy set is static for the process lifetime.
func NewService(policy Policy) (Service, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("rbac: load model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac: new enforcer: %w", err)
	}

	rules := [][]string{
		{RoleAdmin, ResourceEmployee, ActionManage},
		{RoleAdmin, ResourceAttendance, ActionManage},
		{RoleAdmin, ResourceSalary, ActionManage},
		{RoleAdmin, ResourcePayslip, ActionManage},

		{RoleEmployee, ResourceEmployee, ActionReadSelf},
		{RoleEmployee, ResourceAttendance, ActionReadSelf},
		{RoleEmployee, ResourceSalary, ActionReadSelf},
	}
	if policy.SelfAttendance {
		rules = append(rules, []string{RoleEmployee, ResourceAttendance, ActionWriteSelf})
	}

	if _, err := enforcer.AddPolicies(rules); err != nil {
		return nil, fmt.Errorf("rbac: add policies: %w", err)
	}

	return &service{enforcer: enforcer}, nil
}

func (s *service) Enforce(role, resource, action string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.enforcer.Enforce(role, resource, action)
}

// ValidRole reports whether role is one of the fixed role strings.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}
