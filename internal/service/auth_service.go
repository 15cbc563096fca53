package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"practice-service/internal/event"
	"practice-service/internal/models"
	"practice-service/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const DefaultLearningSubject = "english"

type RegisterInput struct {
	Email               string   `json:"email"`
	Password            string   `json:"password"`
	Name                string   `json:"name"`
	InvitationCode      string   `json:"invitationCode"`
	LearningSubject     string   `json:"learningSubject"`
	PreferredCategories []string `json:"preferredCategories"`
	ChallengeAreas      []string `json:"challengeAreas"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users              UserStore
	progress           ProgressStore
	invitations        InvitationStore
	tokens             *TokenService
	publisher          event.Publisher
	invitationRequired bool
}

func NewAuthService(users UserStore, progress ProgressStore, invitations InvitationStore, tokens *TokenService, publisher event.Publisher, invitationRequired bool) *AuthService {
	if publisher == nil {
		publisher = event.Noop{}
	}
	return &AuthService{
		users:              users,
		progress:           progress,
		invitations:        invitations,
		tokens:             tokens,
		publisher:          publisher,
		invitationRequired: invitationRequired,
	}
}

// Register creates the user together with a fresh UserProgress for the
// chosen learning subject.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, invalidf("a valid email is required")
	}
	if len(in.Password) < 6 {
		return nil, invalidf("password must be at least 6 characters")
	}
	if in.Name == "" {
		return nil, invalidf("name is required")
	}
	if in.LearningSubject == "" {
		in.LearningSubject = DefaultLearningSubject
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	redeemed := false
	if s.invitationRequired {
		if strings.TrimSpace(in.InvitationCode) == "" {
			return nil, invalidf("an invitation code is required")
		}
		if err := s.invitations.Redeem(ctx, in.InvitationCode, in.Email, now); err != nil {
			if errors.Is(err, repository.ErrInvalidInvitation) {
				return nil, invalidf("%s", err.Error())
			}
			return nil, err
		}
		redeemed = true
	}

	user, err := s.createUser(ctx, in, now)
	if err != nil {
		if redeemed {
			s.releaseInvitation(ctx, in.InvitationCode, in.Email)
		}
		return nil, err
	}

	progress := models.NewUserProgress(user.ID, in.LearningSubject, in.PreferredCategories, in.ChallengeAreas, now)
	if err := s.progress.Create(ctx, progress); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("error creating progress: %w", err)
	}
	log.Printf("New user registered: %s (%s)", user.ID, in.LearningSubject)

	return s.issue(user)
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, now time.Time) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %s", err)
	}

	user := &models.User{
		Email:           in.Email,
		PasswordHash:    string(hash),
		Name:            in.Name,
		LearningSubject: in.LearningSubject,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// releaseInvitation hands a code back after registration failed. A code
// that cannot be released stays used and is logged.
func (s *AuthService) releaseInvitation(ctx context.Context, code, email string) {
	if err := s.invitations.Release(ctx, code, email); err != nil {
		log.Printf("Error releasing invitation code %s: %v", code, err)
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}
