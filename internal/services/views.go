package services

import (
	"strings"

	"gatepass-backend/internal/models"
)

const recentPassLimit = 5

// RequestForm describes what the request screen needs to render.
type RequestForm struct {
	PassTypes         []models.PassType `json:"passTypes"`
	DefaultDepartment string            `json:"defaultDepartment"`
	Visitor           *models.User      `json:"visitor,omitempty"`
}

// MyPasses returns the passes requested by user, newest first.
func (m *PassManager) MyPasses(user *models.User) []models.GatePass {
	if user == nil {
		return []models.GatePass{}
	}
	return m.filterPasses(func(p *models.GatePass) bool {
		return p.VisitorID == user.ID
	})
}

func (m *PassManager) AllPasses() []models.GatePass {
	return m.filterPasses(func(*models.GatePass) bool { return true })
}

// PassByID returns a pass visible to actor. Visitors only see their own.
func (m *PassManager) PassByID(actor *models.User, id string) (*models.GatePass, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.findPassLocked(id)
	if idx < 0 {
		return nil, ErrPassNotFound
	}
	pass := m.passes[idx]
	if actor == nil || (!actor.Role.IsStaff() && pass.VisitorID != actor.ID) {
		return nil, ErrUnauthorized
	}
	return &pass, nil
}

func (m *PassManager) Users() []models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, len(m.users))
	copy(out, m.users)
	return out
}

// VisitorReport lists VISITOR users with the number of passes bearing their email.
func (m *PassManager) VisitorReport() []models.VisitorSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int, len(m.passes))
	for i := range m.passes {
		counts[strings.ToLower(strings.TrimSpace(m.passes[i].VisitorEmail))]++
	}

	report := []models.VisitorSummary{}
	for _, u := range m.users {
		if u.Role != models.RoleVisitor {
			continue
		}
		report = append(report, models.VisitorSummary{
			User:      u,
			PassCount: counts[strings.ToLower(strings.TrimSpace(u.Email))],
		})
	}
	return report
}

// Dashboard summarizes passes. Visitors only see their own.
func (m *PassManager) Dashboard(user *models.User) models.DashboardStats {
	var passes []models.GatePass
	if user != nil && user.Role == models.RoleVisitor {
		passes = m.MyPasses(user)
	} else {
		passes = m.AllPasses()
	}

	stats := models.DashboardStats{
		Total:    len(passes),
		ByStatus: make(map[models.PassStatus]int, len(models.AllStatuses)),
		ByType:   make(map[models.PassType]int),
		Recent:   passes,
	}
	for _, s := range models.AllStatuses {
		stats.ByStatus[s] = 0
	}
	for i := range passes {
		stats.ByStatus[passes[i].Status]++
		stats.ByType[passes[i].Type]++
	}
	if len(stats.Recent) > recentPassLimit {
		stats.Recent = stats.Recent[:recentPassLimit]
	}
	return stats
}

func (m *PassManager) SecurityQueue() models.SecurityQueue {
	return models.SecurityQueue{
		AwaitingArrival: m.filterPasses(func(p *models.GatePass) bool { return p.Status == models.StatusApproved }),
		OnSite:          m.filterPasses(func(p *models.GatePass) bool { return p.Status == models.StatusCheckedIn }),
	}
}

// History returns passes in a terminal status.
func (m *PassManager) History() []models.GatePass {
	return m.filterPasses(func(p *models.GatePass) bool { return p.Status.Terminal() })
}

// View resolves a named view for actor.
func (m *PassManager) View(actor *models.User, v models.View) (interface{}, error) {
	if !v.Valid() {
		return nil, ErrUnknownView
	}
	if actor == nil || !models.CanAccessView(actor.Role, v) {
		return nil, ErrUnauthorized
	}

	switch v {
	case models.ViewDashboard:
		return m.Dashboard(actor), nil
	case models.ViewRequest:
		u := *actor
		return RequestForm{
			PassTypes:         []models.PassType{models.PassTypeVisitor, models.PassTypeMaterial, models.PassTypeVehicle},
			DefaultDepartment: models.DefaultDepartment,
			Visitor:           &u,
		}, nil
	case models.ViewMyPasses:
		return m.MyPasses(actor), nil
	case models.ViewAllPasses:
		return m.AllPasses(), nil
	case models.ViewSecurity:
		return m.SecurityQueue(), nil
	case models.ViewHistory:
		return m.History(), nil
	default:
		return m.VisitorReport(), nil
	}
}

func (m *PassManager) filterPasses(keep func(*models.GatePass) bool) []models.GatePass {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.GatePass{}
	for i := range m.passes {
		if keep(&m.passes[i]) {
			out = append(out, m.passes[i])
		}
	}
	return out
}
