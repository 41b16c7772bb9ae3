package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/MKhiriev/go-vault-circle/models"
)

// ─────────────────────────────────────────────
// Mock: store.JobRepository
// ─────────────────────────────────────────────

type mockJobRepository struct {
	insertFn          func(ctx context.Context, job models.EncryptJob) (models.EncryptJob, error)
	findByTokenFn     func(ctx context.Context, token string) (models.EncryptJob, error)
	deleteByTokenFn   func(ctx context.Context, token string) error
	liveExistsFn      func(ctx context.Context, secretID, userID int64) (bool, error)
	liveByUserFn      func(ctx context.Context, userID int64) ([]models.EncryptJob, error)
	liveBySecretFn    func(ctx context.Context, secretID int64) ([]models.EncryptJob, error)
	deleteOlderThanFn func(ctx context.Context, cutoff time.Time) ([]string, error)
}

func (m *mockJobRepository) Insert(ctx context.Context, job models.EncryptJob) (models.EncryptJob, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, job)
	}
	return job, nil
}

func (m *mockJobRepository) FindByToken(ctx context.Context, token string) (models.EncryptJob, error) {
	if m.findByTokenFn != nil {
		return m.findByTokenFn(ctx, token)
	}
	return models.EncryptJob{}, nil
}

func (m *mockJobRepository) DeleteByToken(ctx context.Context, token string) error {
	if m.deleteByTokenFn != nil {
		return m.deleteByTokenFn(ctx, token)
	}
	return nil
}

func (m *mockJobRepository) LiveExists(ctx context.Context, secretID, userID int64) (bool, error) {
	if m.liveExistsFn != nil {
		return m.liveExistsFn(ctx, secretID, userID)
	}
	return false, nil
}

func (m *mockJobRepository) LiveByUser(ctx context.Context, userID int64) ([]models.EncryptJob, error) {
	if m.liveByUserFn != nil {
		return m.liveByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockJobRepository) LiveBySecret(ctx context.Context, secretID int64) ([]models.EncryptJob, error) {
	if m.liveBySecretFn != nil {
		return m.liveBySecretFn(ctx, secretID)
	}
	return nil, nil
}

func (m *mockJobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	if m.deleteOlderThanFn != nil {
		return m.deleteOlderThanFn(ctx, cutoff)
	}
	return nil, nil
}

// ─────────────────────────────────────────────
// Mock: store.UserRepository
// ─────────────────────────────────────────────

type mockUserRepository struct {
	createUserFn      func(ctx context.Context, user models.User) (models.User, error)
	findUserByLoginFn func(ctx context.Context, login string) (models.User, error)
	getUserFn         func(ctx context.Context, userID int64) (models.User, error)
	setPublicKeyFn    func(ctx context.Context, userID int64, publicKey []byte) error
	hasPublicKeyFn    func(ctx context.Context, userID int64) (bool, error)
	publicKeyOfFn     func(ctx context.Context, userID int64) ([]byte, error)
}

func (m *mockUserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, user)
	}
	return user, nil
}

func (m *mockUserRepository) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	if m.findUserByLoginFn != nil {
		return m.findUserByLoginFn(ctx, login)
	}
	return models.User{}, nil
}

func (m *mockUserRepository) GetUser(ctx context.Context, userID int64) (models.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, userID)
	}
	return models.User{UserID: userID}, nil
}

func (m *mockUserRepository) SetPublicKey(ctx context.Context, userID int64, publicKey []byte) error {
	if m.setPublicKeyFn != nil {
		return m.setPublicKeyFn(ctx, userID, publicKey)
	}
	return nil
}

func (m *mockUserRepository) HasPublicKey(ctx context.Context, userID int64) (bool, error) {
	if m.hasPublicKeyFn != nil {
		return m.hasPublicKeyFn(ctx, userID)
	}
	return true, nil
}

func (m *mockUserRepository) PublicKeyOf(ctx context.Context, userID int64) ([]byte, error) {
	if m.publicKeyOfFn != nil {
		return m.publicKeyOfFn(ctx, userID)
	}
	return []byte("public-key"), nil
}

// ─────────────────────────────────────────────
// Mock: store.EncryptedSecretRepository
// ─────────────────────────────────────────────

type mockEncryptedSecretRepository struct {
	upsertFn             func(ctx context.Context, secretID, userID int64, ciphertext []byte) error
	existsFn             func(ctx context.Context, secretID, userID int64) (bool, error)
	getFn                func(ctx context.Context, secretID, userID int64) (models.UserEncryptedSecret, error)
	holderIDsFn          func(ctx context.Context, secretID int64) ([]int64, error)
	deleteBySecretFn     func(ctx context.Context, secretID int64) error
	deleteByUserSecretFn func(ctx context.Context, secretID, userID int64) error
}

func (m *mockEncryptedSecretRepository) UpsertCiphertext(ctx context.Context, secretID, userID int64, ciphertext []byte) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, secretID, userID, ciphertext)
	}
	return nil
}

func (m *mockEncryptedSecretRepository) CiphertextExists(ctx context.Context, secretID, userID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, secretID, userID)
	}
	return false, nil
}

func (m *mockEncryptedSecretRepository) GetCiphertext(ctx context.Context, secretID, userID int64) (models.UserEncryptedSecret, error) {
	if m.getFn != nil {
		return m.getFn(ctx, secretID, userID)
	}
	return models.UserEncryptedSecret{}, nil
}

func (m *mockEncryptedSecretRepository) HolderIDs(ctx context.Context, secretID int64) ([]int64, error) {
	if m.holderIDsFn != nil {
		return m.holderIDsFn(ctx, secretID)
	}
	return nil, nil
}

func (m *mockEncryptedSecretRepository) DeleteBySecret(ctx context.Context, secretID int64) error {
	if m.deleteBySecretFn != nil {
		return m.deleteBySecretFn(ctx, secretID)
	}
	return nil
}

func (m *mockEncryptedSecretRepository) DeleteByUserSecret(ctx context.Context, secretID, userID int64) error {
	if m.deleteByUserSecretFn != nil {
		return m.deleteByUserSecretFn(ctx, secretID, userID)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: store.SecretRepository
// ─────────────────────────────────────────────

type mockSecretRepository struct {
	createSecretFn        func(ctx context.Context, secret models.Secret) (models.Secret, error)
	getSecretFn           func(ctx context.Context, secretID int64) (models.Secret, error)
	deleteSecretFn        func(ctx context.Context, secretID int64) error
	assignCategoryFn      func(ctx context.Context, secretID, categoryID int64) error
	secretsByCreatorFn    func(ctx context.Context, userID int64) ([]models.Secret, error)
	secretsByCategoriesFn func(ctx context.Context, categoryIDs []int64) ([]models.Secret, error)
	clearCategoryFn       func(ctx context.Context, categoryIDs []int64) error
}

func (m *mockSecretRepository) CreateSecret(ctx context.Context, secret models.Secret) (models.Secret, error) {
	if m.createSecretFn != nil {
		return m.createSecretFn(ctx, secret)
	}
	return secret, nil
}

func (m *mockSecretRepository) GetSecret(ctx context.Context, secretID int64) (models.Secret, error) {
	if m.getSecretFn != nil {
		return m.getSecretFn(ctx, secretID)
	}
	return models.Secret{SecretID: secretID}, nil
}

func (m *mockSecretRepository) DeleteSecret(ctx context.Context, secretID int64) error {
	if m.deleteSecretFn != nil {
		return m.deleteSecretFn(ctx, secretID)
	}
	return nil
}

func (m *mockSecretRepository) AssignCategory(ctx context.Context, secretID, categoryID int64) error {
	if m.assignCategoryFn != nil {
		return m.assignCategoryFn(ctx, secretID, categoryID)
	}
	return nil
}

func (m *mockSecretRepository) SecretsByCreator(ctx context.Context, userID int64) ([]models.Secret, error) {
	if m.secretsByCreatorFn != nil {
		return m.secretsByCreatorFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockSecretRepository) SecretsByCategories(ctx context.Context, categoryIDs []int64) ([]models.Secret, error) {
	if m.secretsByCategoriesFn != nil {
		return m.secretsByCategoriesFn(ctx, categoryIDs)
	}
	return nil, nil
}

func (m *mockSecretRepository) ClearCategory(ctx context.Context, categoryIDs []int64) error {
	if m.clearCategoryFn != nil {
		return m.clearCategoryFn(ctx, categoryIDs)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: store.GroupRepository
// ─────────────────────────────────────────────

type mockGroupRepository struct {
	createGroupFn func(ctx context.Context, group models.Group) (models.Group, error)
	addMemberFn   func(ctx context.Context, groupID, userID int64) error
	groupsOfFn    func(ctx context.Context, userID int64) ([]int64, error)
	membersOfFn   func(ctx context.Context, groupID int64) ([]int64, error)
}

func (m *mockGroupRepository) CreateGroup(ctx context.Context, group models.Group) (models.Group, error) {
	if m.createGroupFn != nil {
		return m.createGroupFn(ctx, group)
	}
	return group, nil
}

func (m *mockGroupRepository) AddMember(ctx context.Context, groupID, userID int64) error {
	if m.addMemberFn != nil {
		return m.addMemberFn(ctx, groupID, userID)
	}
	return nil
}

func (m *mockGroupRepository) GroupsOf(ctx context.Context, userID int64) ([]int64, error) {
	if m.groupsOfFn != nil {
		return m.groupsOfFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockGroupRepository) MembersOf(ctx context.Context, groupID int64) ([]int64, error) {
	if m.membersOfFn != nil {
		return m.membersOfFn(ctx, groupID)
	}
	return nil, nil
}

// ─────────────────────────────────────────────
// Mock: store.CategoryRepository
// ─────────────────────────────────────────────

type mockCategoryRepository struct {
	getAllFn         func(ctx context.Context) ([]models.Category, error)
	insertFn         func(ctx context.Context, category models.Category) error
	updateParentFn   func(ctx context.Context, categoryID, parentID int64) error
	deleteManyFn     func(ctx context.Context, categoryIDs []int64) error
	replaceGroupsFn  func(ctx context.Context, categoryID int64, groupIDs []int64) error
	setResponsibleFn func(ctx context.Context, categoryID, userID int64) error
}

func (m *mockCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx)
	}
	return nil, nil
}

func (m *mockCategoryRepository) Insert(ctx context.Context, category models.Category) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, category)
	}
	return nil
}

func (m *mockCategoryRepository) UpdateParent(ctx context.Context, categoryID, parentID int64) error {
	if m.updateParentFn != nil {
		return m.updateParentFn(ctx, categoryID, parentID)
	}
	return nil
}

func (m *mockCategoryRepository) DeleteMany(ctx context.Context, categoryIDs []int64) error {
	if m.deleteManyFn != nil {
		return m.deleteManyFn(ctx, categoryIDs)
	}
	return nil
}

func (m *mockCategoryRepository) ReplaceGroups(ctx context.Context, categoryID int64, groupIDs []int64) error {
	if m.replaceGroupsFn != nil {
		return m.replaceGroupsFn(ctx, categoryID, groupIDs)
	}
	return nil
}

func (m *mockCategoryRepository) SetResponsible(ctx context.Context, categoryID, userID int64) error {
	if m.setResponsibleFn != nil {
		return m.setResponsibleFn(ctx, categoryID, userID)
	}
	return nil
}

// ─────────────────────────────────────────────
// Mock: EncoderService
// ─────────────────────────────────────────────

type mockEncoderService struct {
	encodersForFn        func(ctx context.Context, secretID int64) ([]int64, error)
	eligibleRecipientsFn func(ctx context.Context, secretID int64) ([]int64, error)
}

func (m *mockEncoderService) EncodersFor(ctx context.Context, secretID int64) ([]int64, error) {
	if m.encodersForFn != nil {
		return m.encodersForFn(ctx, secretID)
	}
	return nil, nil
}

func (m *mockEncoderService) EligibleRecipients(ctx context.Context, secretID int64) ([]int64, error) {
	if m.eligibleRecipientsFn != nil {
		return m.eligibleRecipientsFn(ctx, secretID)
	}
	return nil, nil
}

// ─────────────────────────────────────────────
// Mock: JobService
// ─────────────────────────────────────────────

type mockJobService struct {
	createFn           func(ctx context.Context, secretID, userID int64) error
	forSecretFn        func(ctx context.Context, secretID int64) error
	forUserFn          func(ctx context.Context, userID int64) error
	forGroupMemberFn   func(ctx context.Context, groupID, userID int64) error
	forCategoryGroupFn func(ctx context.Context, categoryID, groupID int64) error
	forCategoryKeysFn  func(ctx context.Context, categoryID, userID int64) error
	fulfillFn          func(ctx context.Context, token string, ciphertext []byte) (models.FulfillResponse, error)
	replayPendingFn    func(ctx context.Context, userID int64) (int, error)
	abortForSecretFn   func(ctx context.Context, secretID int64) error
	revokeStaleFn      func(ctx context.Context, secretID int64) error
	purgeExpiredFn     func(ctx context.Context, ttl time.Duration) (int, error)
}

func (m *mockJobService) Create(ctx context.Context, secretID, userID int64) error {
	if m.createFn != nil {
		return m.createFn(ctx, secretID, userID)
	}
	return nil
}

func (m *mockJobService) ForSecret(ctx context.Context, secretID int64) error {
	if m.forSecretFn != nil {
		return m.forSecretFn(ctx, secretID)
	}
	return nil
}

func (m *mockJobService) ForUser(ctx context.Context, userID int64) error {
	if m.forUserFn != nil {
		return m.forUserFn(ctx, userID)
	}
	return nil
}

func (m *mockJobService) ForGroupMember(ctx context.Context, groupID, userID int64) error {
	if m.forGroupMemberFn != nil {
		return m.forGroupMemberFn(ctx, groupID, userID)
	}
	return nil
}

func (m *mockJobService) ForCategoryGroup(ctx context.Context, categoryID, groupID int64) error {
	if m.forCategoryGroupFn != nil {
		return m.forCategoryGroupFn(ctx, categoryID, groupID)
	}
	return nil
}

func (m *mockJobService) ForCategoryKeys(ctx context.Context, categoryID, userID int64) error {
	if m.forCategoryKeysFn != nil {
		return m.forCategoryKeysFn(ctx, categoryID, userID)
	}
	return nil
}

func (m *mockJobService) Fulfill(ctx context.Context, token string, ciphertext []byte) (models.FulfillResponse, error) {
	if m.fulfillFn != nil {
		return m.fulfillFn(ctx, token, ciphertext)
	}
	return models.FulfillResponse{}, nil
}

func (m *mockJobService) ReplayPending(ctx context.Context, userID int64) (int, error) {
	if m.replayPendingFn != nil {
		return m.replayPendingFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockJobService) AbortForSecret(ctx context.Context, secretID int64) error {
	if m.abortForSecretFn != nil {
		return m.abortForSecretFn(ctx, secretID)
	}
	return nil
}

func (m *mockJobService) RevokeStale(ctx context.Context, secretID int64) error {
	if m.revokeStaleFn != nil {
		return m.revokeStaleFn(ctx, secretID)
	}
	return nil
}

func (m *mockJobService) PurgeExpired(ctx context.Context, ttl time.Duration) (int, error) {
	if m.purgeExpiredFn != nil {
		return m.purgeExpiredFn(ctx, ttl)
	}
	return 0, nil
}

// ─────────────────────────────────────────────
// Recording NotificationChannel and token stub
// ─────────────────────────────────────────────

type sentNotice struct {
	userID  int64
	topic   string
	payload any
}

// recordingChannel captures every delivery for later assertions.
type recordingChannel struct {
	mu         sync.Mutex
	sent       []sentNotice
	broadcasts []models.Notice
}

func (c *recordingChannel) SendToUser(userID int64, topic string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentNotice{userID: userID, topic: topic, payload: payload})
}

func (c *recordingChannel) Broadcast(topic string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcasts = append(c.broadcasts, models.Notice{Topic: topic, Payload: payload})
}

// stubTokens hands out predictable job tokens.
type stubTokens struct {
	next int
}

func (s *stubTokens) Generate() string {
	s.next++
	return "token-" + strconv.Itoa(s.next)
}
