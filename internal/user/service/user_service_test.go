package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avlasov/userhub/internal/common/clock"
	"github.com/avlasov/userhub/internal/common/constants"
	"github.com/avlasov/userhub/internal/common/logger"
	"github.com/avlasov/userhub/internal/opaqueid"
	"github.com/avlasov/userhub/internal/user/domain"
	"github.com/avlasov/userhub/internal/user/repository"
)

func newTestCodec(t *testing.T) *opaqueid.Codec {
	t.Helper()

	codec, err := opaqueid.New(opaqueid.Config{
		Salt:      "service-test-salt-42",
		MinLength: 8,
		Alphabet:  constants.DefaultOpaqueIDAlphabet,
	})
	if err != nil {
		t.Fatalf("failed to construct codec: %v", err)
	}
	return codec
}

func setupUserService(t *testing.T) (*UserService, *mockRepo, *mockHasher, *opaqueid.Codec) {
	t.Helper()

	repo := &mockRepo{}
	hasher := &mockHasher{}
	codec := newTestCodec(t)
	mockClock := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("failed to construct logger: %v", err)
	}

	svc := NewUserService(UserServiceDeps{
		Repo:   repo,
		Codec:  codec,
		Hasher: hasher,
		Clock:  mockClock,
		Log:    log,
	})

	return svc, repo, hasher, codec
}

func TestUserService_Register_Success(t *testing.T) {
	svc, repo, _, codec := setupUserService(t)

	var persistedID int64
	var persistedOpaque string

	repo.createFunc = func(ctx context.Context, user domain.User) (int64, error) {
		if user.Username != "alice" {
			t.Errorf("expected username alice, got %s", user.Username)
		}
		if user.PasswordHash != "hashed:password123" {
			t.Errorf("unexpected password hash %s", user.PasswordHash)
		}
		if user.CreatedAt.IsZero() {
			t.Error("expected created_at to be set")
		}
		return 42, nil
	}
	repo.setOpaqueIDFunc = func(ctx context.Context, id int64, opaqueID string) error {
		persistedID = id
		persistedOpaque = opaqueID
		return nil
	}

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	expected, _ := codec.Encode(42)
	if user.ID != expected {
		t.Errorf("expected opaque id %q, got %q", expected, user.ID)
	}
	if persistedID != 42 || persistedOpaque != expected {
		t.Errorf("materialization persisted (%d, %q), want (42, %q)", persistedID, persistedOpaque, expected)
	}
	if user.Username != "alice" || user.Email != "alice@example.com" {
		t.Errorf("unexpected response: %+v", user)
	}
}

func TestUserService_Register_UsernameTaken(t *testing.T) {
	svc, repo, _, _ := setupUserService(t)

	repo.createFunc = func(ctx context.Context, user domain.User) (int64, error) {
		return 0, repository.ErrUsernameAlreadyExists
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestUserService_Register_EmailTaken(t *testing.T) {
	svc, repo, _, _ := setupUserService(t)

	repo.createFunc = func(ctx context.Context, user domain.User) (int64, error) {
		return 0, repository.ErrEmailAlreadyExists
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_Register_ValidationFailure(t *testing.T) {
	svc, repo, _, _ := setupUserService(t)

	created := false
	repo.createFunc = func(ctx context.Context, user domain.User) (int64, error) {
		created = true
		return 1, nil
	}

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"short username", RegisterInput{Username: "ab", Email: "a@example.com", Password: "password123"}},
		{"bad username chars", RegisterInput{Username: "al!ce", Email: "a@example.com", Password: "password123"}},
		{"short password", RegisterInput{Username: "alice", Email: "a@example.com", Password: "pw1"}},
		{"letters-only password", RegisterInput{Username: "alice", Email: "a@example.com", Password: "passwordonly"}},
		{"bad email", RegisterInput{Username: "alice", Email: "not-an-email", Password: "password123"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if _, ok := AsValidationError(err); !ok {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}

	if created {
		t.Error("repository must not be called when validation fails")
	}
}

func TestUserService_Register_HashFailure(t *testing.T) {
	svc, repo, hasher, _ := setupUserService(t)

	hashErr := errors.New("bcrypt blew up")
	hasher.hashFunc = func(password string) (string, error) {
		return "", hashErr
	}
	repo.createFunc = func(ctx context.Context, user domain.User) (int64, error) {
		t.Error("repository must not be called when hashing fails")
		return 0, nil
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	if !errors.Is(err, hashErr) {
		t.Fatalf("expected hash error, got %v", err)
	}
}

func TestUserService_Register_SucceedsWhenMaterializationFails(t *testing.T) {
	svc, repo, _, codec := setupUserService(t)

	repo.createFunc = func(ctx context.Context, user domain.User) (int64, error) {
		return 7, nil
	}
	repo.setOpaqueIDFunc = func(ctx context.Context, id int64, opaqueID string) error {
		return errors.New("connection reset")
	}

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	expected, _ := codec.Encode(7)
	if user.ID != expected {
		t.Errorf("expected the computed opaque id %q in the response, got %q", expected, user.ID)
	}
}

func TestUserService_MaterializeOpaqueID_Idempotent(t *testing.T) {
	svc, repo, _, codec := setupUserService(t)

	writes := 0
	repo.setOpaqueIDFunc = func(ctx context.Context, id int64, opaqueID string) error {
		writes++
		return nil
	}

	user := domain.User{ID: 5}

	first, err := svc.materializeOpaqueID(context.Background(), &user)
	if err != nil {
		t.Fatalf("materializeOpaqueID: %v", err)
	}

	second, err := svc.materializeOpaqueID(context.Background(), &user)
	if err != nil {
		t.Fatalf("materializeOpaqueID: %v", err)
	}

	expected, _ := codec.Encode(5)
	if first != expected || second != expected {
		t.Errorf("expected %q from both calls, got %q and %q", expected, first, second)
	}
	if writes != 1 {
		t.Errorf("expected exactly one persisted write, got %d", writes)
	}
}

func TestUserService_GetOpaqueID(t *testing.T) {
	svc, _, _, codec := setupUserService(t)

	stored := domain.User{ID: 9, OpaqueID: "storedvalue"}
	if got := svc.GetOpaqueID(stored); got != "storedvalue" {
		t.Errorf("expected stored value, got %q", got)
	}

	expected, _ := codec.Encode(9)
	legacy := domain.User{ID: 9}
	if got := svc.GetOpaqueID(legacy); got != expected {
		t.Errorf("expected on-the-fly encoding %q, got %q", expected, got)
	}
}

func TestUserService_FindIDByOpaque(t *testing.T) {
	svc, _, _, codec := setupUserService(t)

	encoded, _ := codec.Encode(31)
	id, ok := svc.FindIDByOpaque(encoded)
	if !ok || id != 31 {
		t.Errorf("FindIDByOpaque(%q) = (%d, %v), want (31, true)", encoded, id, ok)
	}

	if _, ok := svc.FindIDByOpaque("not-a-real-hash"); ok {
		t.Error("expected absence for a foreign string")
	}
}

func TestUserService_Resolve_ColumnHit(t *testing.T) {
	svc, repo, _, codec := setupUserService(t)

	encoded, _ := codec.Encode(3)
	want := domain.User{ID: 3, OpaqueID: encoded, Username: "carol"}

	repo.findByOpaqueIDFunc = func(ctx context.Context, opaqueID string) (domain.User, error) {
		if opaqueID != encoded {
			t.Errorf("expected lookup by %q, got %q", encoded, opaqueID)
		}
		return want, nil
	}
	repo.findByIDFunc = func(ctx context.Context, id int64) (domain.User, error) {
		t.Error("primary key fallback must not run when the column matches")
		return domain.User{}, repository.ErrUserNotFound
	}

	got, err := svc.Resolve(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != want.ID || got.Username != want.Username {
		t.Errorf("resolved wrong user: %+v", got)
	}
}

func TestUserService_Resolve_LegacyFallback(t *testing.T) {
	svc, repo, _, codec := setupUserService(t)

	encoded, _ := codec.Encode(11)
	want := domain.User{ID: 11, Username: "dave"}

	repo.findByIDFunc = func(ctx context.Context, id int64) (domain.User, error) {
		if id != 11 {
			t.Errorf("expected fallback lookup of id 11, got %d", id)
		}
		return want, nil
	}

	got, err := svc.Resolve(context.Background(), encoded)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != 11 {
		t.Errorf("resolved wrong user: %+v", got)
	}
}

func TestUserService_Resolve_InvalidString(t *testing.T) {
	svc, repo, _, _ := setupUserService(t)

	looked := false
	repo.findByIDFunc = func(ctx context.Context, id int64) (domain.User, error) {
		looked = true
		return domain.User{}, repository.ErrUserNotFound
	}

	_, err := svc.Resolve(context.Background(), "not-a-real-hash")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if looked {
		t.Error("storage must not be queried when decoding fails")
	}

	if _, err := svc.Resolve(context.Background(), ""); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for empty string, got %v", err)
	}
}

func TestUserService_Resolve_UnknownID(t *testing.T) {
	svc, _, _, codec := setupUserService(t)

	encoded, _ := codec.Encode(404404)

	_, err := svc.Resolve(context.Background(), encoded)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Resolve_StalePersistedOpaqueID(t *testing.T) {
	svc, repo, _, codec := setupUserService(t)

	encoded, _ := codec.Encode(13)

	repo.findByIDFunc = func(ctx context.Context, id int64) (domain.User, error) {
		return domain.User{ID: 13, OpaqueID: "persistedunderoldsalt"}, nil
	}

	_, err := svc.Resolve(context.Background(), encoded)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for a mismatched persisted opaque id, got %v", err)
	}
}

func TestUserService_Register_SequentialUsersIndependent(t *testing.T) {
	svc, repo, _, codec := setupUserService(t)

	nextID := int64(0)
	repo.createFunc = func(ctx context.Context, user domain.User) (int64, error) {
		nextID++
		return nextID, nil
	}

	first, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	second, err := svc.Register(context.Background(), RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password456",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if first.ID == second.ID {
		t.Fatalf("sequential users share opaque id %q", first.ID)
	}

	id1, ok1 := codec.Decode(first.ID)
	id2, ok2 := codec.Decode(second.ID)
	if !ok1 || !ok2 {
		t.Fatal("expected both opaque ids to decode")
	}
	if id1 != 1 || id2 != 2 {
		t.Errorf("decoded ids (%d, %d), want (1, 2)", id1, id2)
	}
}

func TestUserService_Search_EncodesMissingOpaqueIDs(t *testing.T) {
	svc, repo, _, codec := setupUserService(t)

	repo.searchByUsernameFunc = func(ctx context.Context, query string, limit int) ([]domain.Summary, error) {
		return []domain.Summary{
			{ID: 1, OpaqueID: "persisted1", Username: "alice"},
			{ID: 2, Username: "bob"},
		}, nil
	}

	results, err := svc.Search(context.Background(), "li", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].ID != "persisted1" {
		t.Errorf("expected persisted opaque id, got %q", results[0].ID)
	}

	expected, _ := codec.Encode(2)
	if results[1].ID != expected {
		t.Errorf("expected on-the-fly opaque id %q, got %q", expected, results[1].ID)
	}
}
