package services

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"

	"github.com/jobfolio/apiserver/internal/auth"
	"github.com/jobfolio/apiserver/internal/events"
	"github.com/jobfolio/apiserver/internal/store"
	"github.com/jobfolio/apiserver/types"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email
// or a wrong password. Callers must not distinguish the two cases.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user types.User) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByID(ctx context.Context, id int) (types.User, error)
}

// UploadSaver persists validated multipart uploads and can remove them
// again when a registration fails downstream.
type UploadSaver interface {
	SaveProfileImage(ctx context.Context, fh *multipart.FileHeader) (string, error)
	SaveCV(ctx context.Context, fh *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, filename string) error
}

// Registration carries a validated registration submission.
type Registration struct {
	FullName string
	Email    string
	Password string
	Age      *int
	Gender   *string
	Image    *multipart.FileHeader
	CV       *multipart.FileHeader
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo      UserRepository
	saver     UploadSaver
	publisher *events.Publisher
	log       *slog.Logger
}

func NewUserService(repo UserRepository, saver UploadSaver, publisher *events.Publisher, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{
		repo:      repo,
		saver:     saver,
		publisher: publisher,
		log:       log.With("component", "users"),
	}
}

// Register hashes the password, stores the uploaded files, and inserts
// the record. Files written before a failed insert are removed again so
// the upload area does not accumulate unreferenced files.
func (s *UserService) Register(ctx context.Context, reg Registration) (types.User, error) {
	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return types.User{}, err
	}

	user := types.User{
		FullName:     reg.FullName,
		Email:        reg.Email,
		PasswordHash: hash,
		Age:          reg.Age,
		Gender:       reg.Gender,
	}

	var saved []string
	if reg.Image != nil {
		name, err := s.saver.SaveProfileImage(ctx, reg.Image)
		if err != nil {
			return types.User{}, err
		}
		saved = append(saved, name)
		user.ProfileImage = &name
	}
	if reg.CV != nil {
		name, err := s.saver.SaveCV(ctx, reg.CV)
		if err != nil {
			s.removeUploads(ctx, saved)
			return types.User{}, err
		}
		saved = append(saved, name)
		user.CVFilename = &name
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		s.removeUploads(ctx, saved)
		return types.User{}, err
	}

	event := events.UserRegistered{
		UserID:       created.ID,
		Email:        created.Email,
		RegisteredAt: created.RegDate,
	}
	if err := s.publisher.PublishUserRegistered(ctx, event); err != nil {
		// Publishing is best-effort; the account exists either way.
		s.log.ErrorContext(ctx, "failed to publish registration event", "user_id", created.ID, "error", err)
	}

	return created, nil
}

// Authenticate verifies an email/password pair and returns the account.
// Unknown email and wrong password both come back as ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// Profile returns the password-free record for the given id.
func (s *UserService) Profile(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) removeUploads(ctx context.Context, names []string) {
	for _, name := range names {
		if err := s.saver.Remove(ctx, name); err != nil {
			s.log.ErrorContext(ctx, "failed to remove orphaned upload", "filename", name, "error", err)
		}
	}
}
