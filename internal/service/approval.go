package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/dinetap/api/internal/database"
	"github.com/dinetap/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"
)

// Errors returned by the approval service.
var (
	ErrApplicationNotFound = errors.New("application not found")
	// ErrAlreadyReviewed signals the application is in a terminal state.
	// Callers treat a replayed approve/reject as success-no-op.
	ErrAlreadyReviewed = errors.New("application already reviewed")
)

const tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const tempPasswordLength = 16

// ApprovalStore defines the DB methods needed to review applications.
// Satisfied by *database.Queries; narrow interface for testability.
type ApprovalStore interface {
	GetApplication(ctx context.Context, arg database.GetApplicationParams) (database.StaffApplication, error)
	GetStaffAccountByApplication(ctx context.Context, applicationID uuid.UUID) (database.StaffAccount, error)
	CreateStaffAccount(ctx context.Context, arg database.CreateStaffAccountParams) (database.StaffAccount, error)
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	ReviewApplication(ctx context.Context, arg database.ReviewApplicationParams) (database.StaffApplication, error)
}

// ApprovalService moves staff applications through their terminal review.
//
// Approval provisions a staff account and, when the applicant has no
// existing user, a login with a temporary password. The operation has no
// surrounding transaction; instead every step is idempotent, so a retry
// after a partial failure converges on the same end state:
//
//   - account creation is query-before-insert, backed by the unique index
//     on staff_accounts.application_id for the concurrent case;
//   - the status flip is conditional on the row still being PENDING.
type ApprovalService struct {
	store ApprovalStore
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(store ApprovalStore) *ApprovalService {
	return &ApprovalService{store: store}
}

// ReviewRequest identifies the application under review and the reviewer.
type ReviewRequest struct {
	RestaurantID  uuid.UUID
	ApplicationID uuid.UUID
	ReviewerID    uuid.UUID
}

// ApproveResult is the outcome of a successful approval.
type ApproveResult struct {
	Application database.StaffApplication
	Account     database.StaffAccount
	// TempPassword is set only when a new login was provisioned during
	// this call. It is returned exactly once and stored only as a bcrypt
	// hash; there is no way to recover it later.
	TempPassword string
}

// Approve flips a PENDING application to APPROVED and provisions the
// linked staff account. Replays and concurrent double-submits never create
// a second account; the loser observes ErrAlreadyReviewed.
func (s *ApprovalService) Approve(ctx context.Context, req ReviewRequest) (*ApproveResult, error) {
	app, err := s.store.GetApplication(ctx, database.GetApplicationParams{
		ID:           req.ApplicationID,
		RestaurantID: req.RestaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	if app.Status != enum.ApplicationStatusPending {
		return nil, ErrAlreadyReviewed
	}

	account, tempPassword, err := s.ensureAccount(ctx, app)
	if err != nil {
		return nil, err
	}

	reviewed, err := s.store.ReviewApplication(ctx, database.ReviewApplicationParams{
		ID:             req.ApplicationID,
		RestaurantID:   req.RestaurantID,
		Status:         enum.ApplicationStatusApproved,
		ReviewedBy:     req.ReviewerID,
		StaffAccountID: pgtype.UUID{Bytes: account.ID, Valid: true},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// A concurrent reviewer flipped the status first. The account
			// already exists (ours or theirs, the unique index guarantees
			// it is the same row), so the desired end state holds.
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("review application: %w", err)
	}

	return &ApproveResult{
		Application:  reviewed,
		Account:      account,
		TempPassword: tempPassword,
	}, nil
}

// Reject flips a PENDING application to REJECTED. No account side effects.
func (s *ApprovalService) Reject(ctx context.Context, req ReviewRequest) (database.StaffApplication, error) {
	app, err := s.store.GetApplication(ctx, database.GetApplicationParams{
		ID:           req.ApplicationID,
		RestaurantID: req.RestaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.StaffApplication{}, ErrApplicationNotFound
		}
		return database.StaffApplication{}, fmt.Errorf("get application: %w", err)
	}
	if app.Status != enum.ApplicationStatusPending {
		return database.StaffApplication{}, ErrAlreadyReviewed
	}

	reviewed, err := s.store.ReviewApplication(ctx, database.ReviewApplicationParams{
		ID:           req.ApplicationID,
		RestaurantID: req.RestaurantID,
		Status:       enum.ApplicationStatusRejected,
		ReviewedBy:   req.ReviewerID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.StaffApplication{}, ErrAlreadyReviewed
		}
		return database.StaffApplication{}, fmt.Errorf("review application: %w", err)
	}
	return reviewed, nil
}

// ensureAccount returns the staff account linked to app, creating it (and
// a login for the applicant if none exists) on first call. The temporary
// password is non-empty only when a login was provisioned here.
func (s *ApprovalService) ensureAccount(ctx context.Context, app database.StaffApplication) (database.StaffAccount, string, error) {
	existing, err := s.store.GetStaffAccountByApplication(ctx, app.ID)
	if err == nil {
		// A previous (possibly partially failed) approval already
		// provisioned the account. Reuse it; its credential was handed
		// out then and is not recoverable.
		return existing, "", nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return database.StaffAccount{}, "", fmt.Errorf("get staff account: %w", err)
	}

	user, tempPassword, err := s.ensureUser(ctx, app)
	if err != nil {
		return database.StaffAccount{}, "", err
	}

	account, err := s.store.CreateStaffAccount(ctx, database.CreateStaffAccountParams{
		ApplicationID: pgtype.UUID{Bytes: app.ID, Valid: true},
		RestaurantID:  app.RestaurantID,
		UserID:        user.ID,
		Position:      app.Position,
		HourlyRate:    app.HourlyRate,
	})
	if err == nil {
		return account, tempPassword, nil
	}
	if isDuplicateApplicationAccount(err) {
		// Lost the race against a concurrent approve. Use the winner's
		// account; the winner also owns the credential hand-off.
		winner, ferr := s.store.GetStaffAccountByApplication(ctx, app.ID)
		if ferr != nil {
			return database.StaffAccount{}, "", fmt.Errorf("get staff account after conflict: %w", ferr)
		}
		return winner, "", nil
	}
	return database.StaffAccount{}, "", fmt.Errorf("create staff account: %w", err)
}

// ensureUser finds the applicant's existing login or provisions one with a
// generated temporary password.
func (s *ApprovalService) ensureUser(ctx context.Context, app database.StaffApplication) (database.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, app.Email)
	if err == nil {
		return user, "", nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return database.User{}, "", fmt.Errorf("get user by email: %w", err)
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return database.User{}, "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return database.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err = s.store.CreateUser(ctx, database.CreateUserParams{
		RestaurantID:   app.RestaurantID,
		Email:          app.Email,
		HashedPassword: string(hashed),
		FullName:       app.FullName,
		Role:           enum.UserRoleStaff,
	})
	if err != nil {
		return database.User{}, "", fmt.Errorf("create user: %w", err)
	}
	return user, tempPassword, nil
}

func generateTempPassword() (string, error) {
	buf := make([]byte, tempPasswordLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, c := range buf {
		buf[i] = tempPasswordAlphabet[int(c)%len(tempPasswordAlphabet)]
	}
	return string(buf), nil
}

// isDuplicateApplicationAccount checks if the error is a unique constraint
// violation on staff_accounts.application_id (pgconn error code 23505).
func isDuplicateApplicationAccount(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "staff_accounts_application_id_key"
	}
	return false
}
