package service

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/diego12655/cv-analyzer-pro/internal/models"
	"github.com/diego12655/cv-analyzer-pro/internal/util"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.AccessCode{},
		&models.Session{},
		&models.Analysis{},
		&models.RequestLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestService(t *testing.T) *SessionService {
	t.Helper()
	return NewSessionService(newTestDB(t), "test-secret", 30)
}

func mustCreateCode(t *testing.T, svc *SessionService, code string, credits int) {
	t.Helper()
	if _, err := svc.Codes.Create(nil, code, credits); err != nil {
		t.Fatalf("create code %q: %v", code, err)
	}
}

func TestRedeem_UnknownCode(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Redeem("ZZZZ-ZZZZ-ZZZZ")
	if !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("Redeem error = %v, want ErrCodeNotFound", err)
	}
}

func TestRedeem_CreatesSessionWithGrant(t *testing.T) {
	svc := newTestService(t)
	mustCreateCode(t, svc, "AB12-CD34-EF56", 7)

	res, err := svc.Redeem("AB12-CD34-EF56")
	if err != nil {
		t.Fatalf("Redeem error = %v", err)
	}
	if res.Recovered {
		t.Error("first Redeem reported recovered = true")
	}
	if res.Session.CreditsRemaining != 7 {
		t.Errorf("CreditsRemaining = %d, want 7", res.Session.CreditsRemaining)
	}
	if res.Token == "" {
		t.Error("Redeem returned empty token")
	}

	// the code is now marked used
	code, err := svc.Codes.FindByCode("AB12-CD34-EF56")
	if err != nil {
		t.Fatalf("FindByCode error = %v", err)
	}
	if !code.Used {
		t.Error("code.Used = false after first redemption")
	}
}

func TestRedeem_CaseInsensitive(t *testing.T) {
	svc := newTestService(t)
	mustCreateCode(t, svc, "AB12-CD34-EF56", 3)

	res, err := svc.Redeem("ab12-cd34-ef56")
	if err != nil {
		t.Fatalf("Redeem lower-case error = %v", err)
	}
	if res.Session.CreditsRemaining != 3 {
		t.Errorf("CreditsRemaining = %d, want 3", res.Session.CreditsRemaining)
	}
}

func TestRedeem_Idempotent(t *testing.T) {
	svc := newTestService(t)
	mustCreateCode(t, svc, "AB12-CD34-EF56", 5)

	first, err := svc.Redeem("AB12-CD34-EF56")
	if err != nil {
		t.Fatalf("first Redeem error = %v", err)
	}

	// spend some credits so recovery reflects the live balance
	if _, err := svc.Consume(first.Session.ID, 2, func() ([]models.Analysis, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("Consume error = %v", err)
	}

	second, err := svc.Redeem("AB12-CD34-EF56")
	if err != nil {
		t.Fatalf("second Redeem error = %v", err)
	}
	if !second.Recovered {
		t.Error("second Redeem reported recovered = false")
	}
	if second.Session.ID != first.Session.ID {
		t.Errorf("second Redeem session = %q, want same as first %q", second.Session.ID, first.Session.ID)
	}
	if second.Session.CreditsRemaining != 3 {
		t.Errorf("recovered CreditsRemaining = %d, want 3", second.Session.CreditsRemaining)
	}
	if second.Token == "" {
		t.Error("recovered Redeem returned empty token")
	}
}

func TestAuthenticate_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	mustCreateCode(t, svc, "AB12-CD34-EF56", 3)

	res, err := svc.Redeem("AB12-CD34-EF56")
	if err != nil {
		t.Fatalf("Redeem error = %v", err)
	}

	sess, err := svc.Authenticate(res.Token)
	if err != nil {
		t.Fatalf("Authenticate error = %v", err)
	}
	if sess.ID != res.Session.ID {
		t.Errorf("Authenticate session = %q, want %q", sess.ID, res.Session.ID)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	svc := newTestService(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.Authenticate(token); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Authenticate(%q) error = %v, want ErrUnauthenticated", token, err)
		}
	}
}

func TestAuthenticate_VanishedSession(t *testing.T) {
	svc := newTestService(t)

	// a validly signed credential whose session row does not exist must be
	// rejected; the store is the source of truth
	token, err := util.GenerateToken("test-secret", "no-such-session", 0)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	if _, err := svc.Authenticate(token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Authenticate error = %v, want ErrUnauthenticated", err)
	}
}

func TestConsume_DebitsAfterSuccess(t *testing.T) {
	svc := newTestService(t)
	mustCreateCode(t, svc, "AB12-CD34-EF56", 5)
	res, _ := svc.Redeem("AB12-CD34-EF56")

	updated, err := svc.Consume(res.Session.ID, 2, func() ([]models.Analysis, error) {
		return []models.Analysis{
			{ID: "a1", SessionID: res.Session.ID, CandidateName: "Ana", OverallScore: 88},
			{ID: "a2", SessionID: res.Session.ID, CandidateName: "Luis", OverallScore: 70},
		}, nil
	})
	if err != nil {
		t.Fatalf("Consume error = %v", err)
	}
	if updated.CreditsRemaining != 3 {
		t.Errorf("CreditsRemaining = %d, want 3", updated.CreditsRemaining)
	}

	// usage records committed together with the debit
	analyses, err := svc.Sessions.ListAnalyses(res.Session.ID)
	if err != nil {
		t.Fatalf("ListAnalyses error = %v", err)
	}
	if len(analyses) != 2 {
		t.Errorf("len(analyses) = %d, want 2", len(analyses))
	}
}

func TestConsume_InsufficientCredits(t *testing.T) {
	svc := newTestService(t)
	mustCreateCode(t, svc, "AB12-CD34-EF56", 1)
	res, _ := svc.Redeem("AB12-CD34-EF56")

	called := false
	_, err := svc.Consume(res.Session.ID, 2, func() ([]models.Analysis, error) {
		called = true
		return nil, nil
	})
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("Consume error = %v, want ErrInsufficientCredits", err)
	}
	if called {
		t.Error("downstream ran despite insufficient credits")
	}

	after, _ := svc.Sessions.FindByID(res.Session.ID)
	if after.CreditsRemaining != 1 {
		t.Errorf("CreditsRemaining = %d, want 1 (unchanged)", after.CreditsRemaining)
	}
}

func TestConsume_NoDebitOnDownstreamFailure(t *testing.T) {
	svc := newTestService(t)
	mustCreateCode(t, svc, "AB12-CD34-EF56", 5)
	res, _ := svc.Redeem("AB12-CD34-EF56")

	_, err := svc.Consume(res.Session.ID, 1, func() ([]models.Analysis, error) {
		return nil, errors.New("model unavailable")
	})
	if !errors.Is(err, ErrUpstreamScoring) {
		t.Fatalf("Consume error = %v, want ErrUpstreamScoring", err)
	}

	after, _ := svc.Sessions.FindByID(res.Session.ID)
	if after.CreditsRemaining != 5 {
		t.Errorf("CreditsRemaining = %d, want 5 (no debit on failure)", after.CreditsRemaining)
	}
}

func TestConsume_ConcurrentNoDoubleSpend(t *testing.T) {
	svc := newTestService(t)
	mustCreateCode(t, svc, "AB12-CD34-EF56", 1)
	res, _ := svc.Redeem("AB12-CD34-EF56")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Consume(res.Session.ID, 1, func() ([]models.Analysis, error) {
				return nil, nil
			})
		}(i)
	}
	wg.Wait()

	var successes, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInsufficientCredits):
			insufficient++
		default:
			t.Fatalf("unexpected Consume error = %v", err)
		}
	}
	if successes != 1 || insufficient != 1 {
		t.Errorf("successes = %d, insufficient = %d, want exactly 1 and 1", successes, insufficient)
	}

	after, _ := svc.Sessions.FindByID(res.Session.ID)
	if after.CreditsRemaining != 0 {
		t.Errorf("CreditsRemaining = %d, want 0", after.CreditsRemaining)
	}
}

// 完整场景：3 个额度的码，兑换后消费三次，第四次拒绝
func TestLifecycle_Scenario(t *testing.T) {
	svc := newTestService(t)
	mustCreateCode(t, svc, "AB12-CD34-EF56", 3)

	res, err := svc.Redeem("AB12-CD34-EF56")
	if err != nil {
		t.Fatalf("Redeem error = %v", err)
	}
	if res.Session.CreditsRemaining != 3 {
		t.Fatalf("balance after redeem = %d, want 3", res.Session.CreditsRemaining)
	}

	noop := func() ([]models.Analysis, error) { return nil, nil }
	for want := 2; want >= 0; want-- {
		updated, err := svc.Consume(res.Session.ID, 1, noop)
		if err != nil {
			t.Fatalf("Consume error = %v", err)
		}
		if updated.CreditsRemaining != want {
			t.Fatalf("balance = %d, want %d", updated.CreditsRemaining, want)
		}
	}

	// exhausted state is terminal: fourth consume rejected, balance stays 0
	if _, err := svc.Consume(res.Session.ID, 1, noop); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("fourth Consume error = %v, want ErrInsufficientCredits", err)
	}
	after, _ := svc.Sessions.FindByID(res.Session.ID)
	if after.CreditsRemaining != 0 {
		t.Errorf("balance = %d, want 0", after.CreditsRemaining)
	}
}

func TestGenerateCodes(t *testing.T) {
	svc := newTestService(t)
	codeSvc := NewCodeService(svc.Codes)

	codes, err := codeSvc.GenerateCodes(5, 10)
	if err != nil {
		t.Fatalf("GenerateCodes error = %v", err)
	}
	if len(codes) != 5 {
		t.Fatalf("len(codes) = %d, want 5", len(codes))
	}

	// every generated code is redeemable for the requested grant
	res, err := svc.Redeem(codes[0])
	if err != nil {
		t.Fatalf("Redeem generated code error = %v", err)
	}
	if res.Session.CreditsRemaining != 10 {
		t.Errorf("CreditsRemaining = %d, want 10", res.Session.CreditsRemaining)
	}
}

func TestGenerateCodes_Validation(t *testing.T) {
	svc := newTestService(t)
	codeSvc := NewCodeService(svc.Codes)

	testCases := []struct {
		quantity, credits int
	}{
		{0, 5},
		{-1, 5},
		{101, 5},
		{1, -1},
		{1, 1001},
	}
	for _, tc := range testCases {
		if _, err := codeSvc.GenerateCodes(tc.quantity, tc.credits); err == nil {
			t.Errorf("GenerateCodes(%d, %d) error = nil, want error", tc.quantity, tc.credits)
		}
	}
}
