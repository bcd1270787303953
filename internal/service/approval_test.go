package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dinetap/api/internal/database"
	"github.com/dinetap/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"
)

// mockApprovalStore is a map-backed store that simulates the PostgreSQL
// behavior the pipeline relies on: the unique index on application_id and
// the PENDING-only conditional review update.
type mockApprovalStore struct {
	applications map[uuid.UUID]database.StaffApplication
	accounts     map[uuid.UUID]database.StaffAccount // keyed by application ID
	users        map[string]database.User            // keyed by email

	// hideAccountReads makes the next N GetStaffAccountByApplication
	// calls miss, simulating a concurrent approver whose insert lands
	// between our query-before-insert and our insert.
	hideAccountReads int

	createAccountCalls int
	createUserCalls    int
}

func newMockApprovalStore() *mockApprovalStore {
	return &mockApprovalStore{
		applications: make(map[uuid.UUID]database.StaffApplication),
		accounts:     make(map[uuid.UUID]database.StaffAccount),
		users:        make(map[string]database.User),
	}
}

func (m *mockApprovalStore) GetApplication(_ context.Context, arg database.GetApplicationParams) (database.StaffApplication, error) {
	app, ok := m.applications[arg.ID]
	if !ok || app.RestaurantID != arg.RestaurantID {
		return database.StaffApplication{}, pgx.ErrNoRows
	}
	return app, nil
}

func (m *mockApprovalStore) GetStaffAccountByApplication(_ context.Context, applicationID uuid.UUID) (database.StaffAccount, error) {
	if m.hideAccountReads > 0 {
		m.hideAccountReads--
		return database.StaffAccount{}, pgx.ErrNoRows
	}
	acct, ok := m.accounts[applicationID]
	if !ok {
		return database.StaffAccount{}, pgx.ErrNoRows
	}
	return acct, nil
}

func (m *mockApprovalStore) CreateStaffAccount(_ context.Context, arg database.CreateStaffAccountParams) (database.StaffAccount, error) {
	m.createAccountCalls++
	appID := uuid.UUID(arg.ApplicationID.Bytes)
	if _, exists := m.accounts[appID]; exists {
		return database.StaffAccount{}, &pgconn.PgError{
			Code:           "23505",
			ConstraintName: "staff_accounts_application_id_key",
		}
	}
	acct := database.StaffAccount{
		ID:            uuid.New(),
		ApplicationID: arg.ApplicationID,
		RestaurantID:  arg.RestaurantID,
		UserID:        arg.UserID,
		Position:      arg.Position,
		HourlyRate:    arg.HourlyRate,
		IsAvailable:   true,
		CreatedAt:     time.Now(),
	}
	m.accounts[appID] = acct
	return acct, nil
}

func (m *mockApprovalStore) GetUserByEmail(_ context.Context, email string) (database.User, error) {
	u, ok := m.users[email]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockApprovalStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	m.createUserCalls++
	u := database.User{
		ID:             uuid.New(),
		RestaurantID:   arg.RestaurantID,
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		FullName:       arg.FullName,
		Role:           arg.Role,
		IsActive:       true,
	}
	m.users[u.Email] = u
	return u, nil
}

func (m *mockApprovalStore) ReviewApplication(_ context.Context, arg database.ReviewApplicationParams) (database.StaffApplication, error) {
	app, ok := m.applications[arg.ID]
	if !ok || app.RestaurantID != arg.RestaurantID || app.Status != enum.ApplicationStatusPending {
		return database.StaffApplication{}, pgx.ErrNoRows
	}
	app.Status = arg.Status
	app.ReviewedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	app.ReviewedBy = pgtype.UUID{Bytes: arg.ReviewedBy, Valid: true}
	app.StaffAccountID = arg.StaffAccountID
	m.applications[arg.ID] = app
	return app, nil
}

func pendingApplication(restaurantID uuid.UUID) database.StaffApplication {
	rate := pgtype.Numeric{}
	_ = rate.Scan("18.50")
	return database.StaffApplication{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		FullName:     "Dana Reyes",
		Email:        "dana@example.com",
		Phone:        "+15550100",
		Position:     enum.PositionWaiter,
		HourlyRate:   rate,
		Status:       enum.ApplicationStatusPending,
		AppliedAt:    time.Now(),
	}
}

func TestApprove_ProvisionsAccountAndCredential(t *testing.T) {
	restaurantID := uuid.New()
	reviewerID := uuid.New()
	app := pendingApplication(restaurantID)
	store := newMockApprovalStore()
	store.applications[app.ID] = app
	svc := NewApprovalService(store)

	result, err := svc.Approve(context.Background(), ReviewRequest{
		RestaurantID:  restaurantID,
		ApplicationID: app.ID,
		ReviewerID:    reviewerID,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if result.Application.Status != enum.ApplicationStatusApproved {
		t.Errorf("application status: got %s, want APPROVED", result.Application.Status)
	}
	if !result.Application.ReviewedAt.Valid {
		t.Error("reviewed_at not set")
	}
	if uuid.UUID(result.Application.ReviewedBy.Bytes) != reviewerID {
		t.Error("reviewer not recorded")
	}
	if result.Account.Position != app.Position {
		t.Errorf("account position: got %s, want %s", result.Account.Position, app.Position)
	}
	if result.TempPassword == "" {
		t.Fatal("expected a temporary password for a new applicant")
	}

	user, ok := store.users[app.Email]
	if !ok {
		t.Fatal("no user provisioned")
	}
	if user.Role != enum.UserRoleStaff {
		t.Errorf("user role: got %s, want STAFF", user.Role)
	}
	if user.HashedPassword == result.TempPassword {
		t.Fatal("temporary password stored in plaintext; expected bcrypt hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(result.TempPassword)); err != nil {
		t.Errorf("stored hash does not match the returned credential: %v", err)
	}
}

func TestApprove_ReusesExistingUser(t *testing.T) {
	restaurantID := uuid.New()
	app := pendingApplication(restaurantID)
	store := newMockApprovalStore()
	store.applications[app.ID] = app
	store.users[app.Email] = database.User{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Email:        app.Email,
		Role:         enum.UserRoleStaff,
		IsActive:     true,
	}
	svc := NewApprovalService(store)

	result, err := svc.Approve(context.Background(), ReviewRequest{
		RestaurantID:  restaurantID,
		ApplicationID: app.ID,
		ReviewerID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if result.TempPassword != "" {
		t.Error("temporary password issued for an applicant who already has a login")
	}
	if store.createUserCalls != 0 {
		t.Errorf("created %d users, want 0", store.createUserCalls)
	}
}

func TestApprove_NotFound(t *testing.T) {
	store := newMockApprovalStore()
	svc := NewApprovalService(store)

	_, err := svc.Approve(context.Background(), ReviewRequest{
		RestaurantID:  uuid.New(),
		ApplicationID: uuid.New(),
		ReviewerID:    uuid.New(),
	})
	if !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got: %v", err)
	}
}

func TestApprove_ReplayObservesAlreadyReviewed(t *testing.T) {
	restaurantID := uuid.New()
	app := pendingApplication(restaurantID)
	store := newMockApprovalStore()
	store.applications[app.ID] = app
	svc := NewApprovalService(store)

	req := ReviewRequest{RestaurantID: restaurantID, ApplicationID: app.ID, ReviewerID: uuid.New()}

	if _, err := svc.Approve(context.Background(), req); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	_, err := svc.Approve(context.Background(), req)
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed on replay, got: %v", err)
	}
	if len(store.accounts) != 1 {
		t.Errorf("replay created accounts: got %d, want 1", len(store.accounts))
	}
}

func TestApprove_RejectedApplicationStaysRejected(t *testing.T) {
	restaurantID := uuid.New()
	app := pendingApplication(restaurantID)
	app.Status = enum.ApplicationStatusRejected
	store := newMockApprovalStore()
	store.applications[app.ID] = app
	svc := NewApprovalService(store)

	_, err := svc.Approve(context.Background(), ReviewRequest{
		RestaurantID:  restaurantID,
		ApplicationID: app.ID,
		ReviewerID:    uuid.New(),
	})
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got: %v", err)
	}
	if len(store.accounts) != 0 {
		t.Errorf("approving a rejected application created %d accounts, want 0", len(store.accounts))
	}
}

func TestApprove_RetryAfterPartialFailureReusesAccount(t *testing.T) {
	// A previous approve created the account but crashed before flipping
	// the application status. The retry must reuse the account and not
	// issue a new credential.
	restaurantID := uuid.New()
	app := pendingApplication(restaurantID)
	store := newMockApprovalStore()
	store.applications[app.ID] = app

	existingUser := database.User{ID: uuid.New(), Email: app.Email, Role: enum.UserRoleStaff, IsActive: true}
	store.users[app.Email] = existingUser
	store.accounts[app.ID] = database.StaffAccount{
		ID:            uuid.New(),
		ApplicationID: pgtype.UUID{Bytes: app.ID, Valid: true},
		RestaurantID:  restaurantID,
		UserID:        existingUser.ID,
		Position:      app.Position,
		IsAvailable:   true,
	}
	svc := NewApprovalService(store)

	result, err := svc.Approve(context.Background(), ReviewRequest{
		RestaurantID:  restaurantID,
		ApplicationID: app.ID,
		ReviewerID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("retried approve: %v", err)
	}
	if result.TempPassword != "" {
		t.Error("retry re-issued a temporary password")
	}
	if store.createAccountCalls != 0 {
		t.Errorf("retry attempted %d account inserts, want 0", store.createAccountCalls)
	}
	if len(store.accounts) != 1 {
		t.Errorf("accounts after retry: got %d, want 1", len(store.accounts))
	}
}

func TestApprove_ConcurrentDoubleSubmitCreatesOneAccount(t *testing.T) {
	// Interleaving: both callers pass the query-before-insert miss, the
	// second insert trips the unique index and must converge on the
	// winner's account.
	restaurantID := uuid.New()
	app := pendingApplication(restaurantID)
	store := newMockApprovalStore()
	store.applications[app.ID] = app
	store.hideAccountReads = 2
	svc := NewApprovalService(store)

	req := ReviewRequest{RestaurantID: restaurantID, ApplicationID: app.ID, ReviewerID: uuid.New()}

	first, err := svc.Approve(context.Background(), req)
	if err != nil {
		t.Fatalf("first approve: %v", err)
	}

	// Second caller read the application before the first one reviewed it.
	store.applications[app.ID] = app
	second, err := svc.Approve(context.Background(), req)
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}

	if len(store.accounts) != 1 {
		t.Fatalf("accounts after double submit: got %d, want 1", len(store.accounts))
	}
	if second.Account.ID != first.Account.ID {
		t.Error("second caller got a different account than the first")
	}
	if second.TempPassword != "" {
		t.Error("losing caller received a temporary password")
	}
}

func TestReject_Terminal(t *testing.T) {
	restaurantID := uuid.New()
	reviewerID := uuid.New()
	app := pendingApplication(restaurantID)
	store := newMockApprovalStore()
	store.applications[app.ID] = app
	svc := NewApprovalService(store)

	req := ReviewRequest{RestaurantID: restaurantID, ApplicationID: app.ID, ReviewerID: reviewerID}

	rejected, err := svc.Reject(context.Background(), req)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != enum.ApplicationStatusRejected {
		t.Errorf("status: got %s, want REJECTED", rejected.Status)
	}
	if !rejected.ReviewedAt.Valid {
		t.Error("reviewed_at not set")
	}
	if len(store.accounts) != 0 {
		t.Errorf("reject created %d accounts, want 0", len(store.accounts))
	}

	_, err = svc.Reject(context.Background(), req)
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed on replayed reject, got: %v", err)
	}
}

func TestReject_NotFound(t *testing.T) {
	svc := NewApprovalService(newMockApprovalStore())

	_, err := svc.Reject(context.Background(), ReviewRequest{
		RestaurantID:  uuid.New(),
		ApplicationID: uuid.New(),
		ReviewerID:    uuid.New(),
	})
	if !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got: %v", err)
	}
}
