package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gatepass-backend/internal/models"
	"gatepass-backend/pkg/metrics"
	"gatepass-backend/pkg/store"
	"gatepass-backend/pkg/verifier"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// persistTimeout bounds a single mirror write.
const persistTimeout = 5 * time.Second

// Notifier receives an event after every pass mutation.
type Notifier interface {
	NotifyPass(ctx context.Context, event models.PassEvent) error
}

// PassManager owns the users, passes and session, and mirrors every mutation
// into the store. The store is only read by Load.
type PassManager struct {
	store           store.Store
	verifier        verifier.Verifier
	notifier        Notifier
	validator       *validator.Validate
	logger          *zap.Logger
	verifierTimeout time.Duration
	now             func() time.Time
	newID           func() string

	mu      sync.RWMutex
	users   []models.User
	passes  []models.GatePass // newest first
	session *models.User

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

func NewPassManager(st store.Store, v verifier.Verifier, logger *zap.Logger) *PassManager {
	return &PassManager{
		store:     st,
		verifier:  v,
		validator: validator.New(),
		logger:    logger.Named("passes"),
		now:       func() time.Time { return time.Now().UTC().Round(0) },
		newID:     uuid.NewString,
		users:     []models.User{models.DefaultAdmin()},
		passes:    []models.GatePass{},
		inflight:  make(map[string]struct{}),
	}
}

// SetNotifier allows setting the event sink for pass updates
func (m *PassManager) SetNotifier(n Notifier) {
	m.notifier = n
}

// SetVerifierTimeout bounds each plausibility check. Zero disables the bound.
func (m *PassManager) SetVerifierTimeout(d time.Duration) {
	m.verifierTimeout = d
}

// SetClock replaces the time source
func (m *PassManager) SetClock(now func() time.Time) {
	m.now = now
}

// Load reads all three keys once. Missing keys mean empty collections; the
// default administrator is prepended when absent.
func (m *PassManager) Load(ctx context.Context) error {
	var users []models.User
	if err := m.store.Get(ctx, store.KeyRegisteredUsers, &users); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to load users: %w", err)
	}

	var passes []models.GatePass
	if err := m.store.Get(ctx, store.KeyGatePasses, &passes); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to load passes: %w", err)
	}

	var session *models.User
	var saved models.User
	if err := m.store.Get(ctx, store.KeyCurrentUser, &saved); err == nil {
		session = &saved
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to load session: %w", err)
	}

	admin := models.DefaultAdmin()
	injected := true
	for i := range users {
		if users[i].HasEmail(admin.Email) {
			injected = false
			break
		}
	}
	if injected {
		users = append([]models.User{admin}, users...)
	}
	if passes == nil {
		passes = []models.GatePass{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = users
	m.passes = passes
	m.session = session

	if injected {
		m.persistLocked(ctx, store.KeyRegisteredUsers, m.users)
	}

	m.logger.Info("State loaded",
		zap.Int("users", len(users)),
		zap.Int("passes", len(passes)),
		zap.Bool("session", session != nil),
	)
	metrics.SetOnSite(m.countLocked(models.StatusCheckedIn))
	return nil
}

// Register adds a user and logs them in. Role defaults to VISITOR.
func (m *PassManager) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if err := m.validator.Struct(req); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleVisitor
	}

	user := models.User{
		ID:     m.newID(),
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.TrimSpace(req.Email),
		Role:   role,
		Avatar: req.Avatar,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.findUserLocked(user.Email); ok {
		return nil, ErrEmailTaken
	}

	m.users = append(m.users, user)
	m.persistLocked(ctx, store.KeyRegisteredUsers, m.users)
	m.setSessionLocked(ctx, user)

	m.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &user, nil
}

// Login looks up a registered user by email, case-insensitively.
func (m *PassManager) Login(ctx context.Context, email string) (*models.User, models.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.findUserLocked(email)
	if !ok {
		return nil, "", ErrLoginNotFound
	}

	user := m.users[idx]
	m.setSessionLocked(ctx, user)

	m.logger.Info("User logged in", zap.String("user_id", user.ID))
	return &user, models.LandingView(user.Role), nil
}

func (m *PassManager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	ctx, cancel := persistContext(ctx)
	defer cancel()
	if err := m.store.Delete(ctx, store.KeyCurrentUser); err != nil {
		m.logger.Error("Failed to clear session", zap.Error(err))
	}
}

// Session returns the most recent logged-in user, if any.
func (m *PassManager) Session() (*models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return nil, false
	}
	u := *m.session
	return &u, true
}

func (m *PassManager) UserByID(id string) (*models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, true
		}
	}
	return nil, false
}

// RequestPass verifies the purpose and records a PENDING pass. A nil actor
// submits as a guest. The returned view is where the caller should go next.
func (m *PassManager) RequestPass(ctx context.Context, actor *models.User, req *CreatePassRequest) (*models.GatePass, models.View, error) {
	if err := m.validator.Struct(req); err != nil {
		return nil, "", err
	}

	visitorID, visitorName, visitorEmail := models.GuestVisitorID, strings.TrimSpace(req.VisitorName), strings.TrimSpace(req.VisitorEmail)
	if actor != nil {
		visitorID, visitorName, visitorEmail = actor.ID, actor.Name, actor.Email
	} else if visitorName == "" || visitorEmail == "" {
		return nil, "", ErrGuestDetailsRequired
	}

	release, ok := m.acquire(requesterKey(actor, visitorEmail))
	if !ok {
		return nil, "", ErrRequestInProgress
	}
	defer release()

	result, err := m.verify(ctx, req.Purpose, req.Type)
	if err != nil {
		metrics.ObservePassRequested(string(req.Type), "failed")
		m.logger.Error("Purpose verification failed, pass not created",
			zap.String("visitor_email", visitorEmail),
			zap.String("type", string(req.Type)),
			zap.Error(err),
		)
		return nil, "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	department := strings.TrimSpace(req.Department)
	if department == "" {
		department = models.DefaultDepartment
	}

	pass := models.GatePass{
		ID:             "GP-" + strings.ToUpper(m.newID()),
		VisitorID:      visitorID,
		VisitorName:    visitorName,
		VisitorEmail:   visitorEmail,
		Purpose:        req.Purpose,
		Department:     department,
		Type:           req.Type,
		Status:         models.StatusPending,
		RequestedAt:    m.now(),
		ValidDate:      req.ValidDate,
		PhotoURL:       req.PhotoURL,
		AIVerification: result.Reasoning,
	}

	m.mu.Lock()
	m.passes = append([]models.GatePass{pass}, m.passes...)
	m.persistLocked(ctx, store.KeyGatePasses, m.passes)
	m.mu.Unlock()

	metrics.ObservePassRequested(string(pass.Type), "created")
	m.logger.Info("Pass requested", zap.String("pass_id", pass.ID), zap.String("visitor_id", visitorID))
	m.notify(ctx, models.NewPassEvent(models.EventPassRequested, pass, "", pass.RequestedAt))

	return &pass, models.ViewAfterRequest(actor), nil
}

// UpdateStatus moves a pass along its lifecycle. Only staff may do so, and
// checkInTime/checkOutTime are set exactly when the matching status is entered.
func (m *PassManager) UpdateStatus(ctx context.Context, actor *models.User, passID string, status models.PassStatus) (*models.GatePass, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if actor == nil || !actor.Role.IsStaff() {
		return nil, ErrUnauthorized
	}

	m.mu.Lock()

	idx := m.findPassLocked(passID)
	if idx < 0 {
		m.mu.Unlock()
		return nil, ErrPassNotFound
	}

	pass := m.passes[idx]
	previous := pass.Status
	if !models.CanTransition(previous, status) {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, previous, status)
	}

	at := m.now()
	pass.Status = status
	switch status {
	case models.StatusCheckedIn:
		pass.CheckInTime = &at
	case models.StatusCheckedOut:
		pass.CheckOutTime = &at
	}

	m.passes[idx] = pass
	m.persistLocked(ctx, store.KeyGatePasses, m.passes)
	onSite := m.countLocked(models.StatusCheckedIn)
	m.mu.Unlock()

	metrics.ObserveStatusChange(string(status))
	metrics.SetOnSite(onSite)
	m.logger.Info("Pass status updated",
		zap.String("pass_id", passID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
		zap.String("actor_id", actor.ID),
	)
	m.notify(ctx, models.NewPassEvent(models.EventPassStatusChanged, pass, previous, at))

	return &pass, nil
}

func (m *PassManager) verify(ctx context.Context, purpose string, passType models.PassType) (*verifier.Result, error) {
	if m.verifierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.verifierTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := m.verifier.VerifyPurpose(ctx, purpose, string(passType))
	if err == nil && result == nil {
		err = verifier.ErrEmptyResponse
	}
	if err != nil {
		metrics.ObserveVerifier("error", time.Since(start))
		return nil, err
	}
	metrics.ObserveVerifier("ok", time.Since(start))
	return result, nil
}

// acquire marks a requester busy. The returned func releases it.
func (m *PassManager) acquire(key string) (func(), bool) {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()

	if _, busy := m.inflight[key]; busy {
		return nil, false
	}
	m.inflight[key] = struct{}{}
	return func() {
		m.inflightMu.Lock()
		delete(m.inflight, key)
		m.inflightMu.Unlock()
	}, true
}

func requesterKey(actor *models.User, email string) string {
	if actor != nil {
		return "user:" + actor.ID
	}
	return "guest:" + strings.ToLower(email)
}

func (m *PassManager) notify(ctx context.Context, event models.PassEvent) {
	if m.notifier == nil {
		return
	}
	ctx, cancel := persistContext(ctx)
	defer cancel()
	if err := m.notifier.NotifyPass(ctx, event); err != nil {
		m.logger.Warn("Failed to publish pass event",
			zap.String("event", string(event.Type)),
			zap.String("pass_id", event.PassID),
			zap.Error(err),
		)
	}
}

func (m *PassManager) setSessionLocked(ctx context.Context, user models.User) {
	m.session = &user
	m.persistLocked(ctx, store.KeyCurrentUser, user)
}

// persistLocked writes a snapshot. Failures are logged: memory stays authoritative.
func (m *PassManager) persistLocked(ctx context.Context, key string, value interface{}) {
	ctx, cancel := persistContext(ctx)
	defer cancel()
	if err := m.store.Set(ctx, key, value); err != nil {
		m.logger.Error("Failed to persist state", zap.String("key", key), zap.Error(err))
	}
}

func (m *PassManager) findUserLocked(email string) (int, bool) {
	for i := range m.users {
		if m.users[i].HasEmail(email) {
			return i, true
		}
	}
	return -1, false
}

func (m *PassManager) findPassLocked(id string) int {
	for i := range m.passes {
		if m.passes[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *PassManager) countLocked(status models.PassStatus) int {
	n := 0
	for i := range m.passes {
		if m.passes[i].Status == status {
			n++
		}
	}
	return n
}

// persistContext detaches a store write from the caller's cancellation. The
// in-memory change is already committed when it runs.
func persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}
