package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"ecocook/internal/core/auth"
	"ecocook/internal/core/catalog"
	"ecocook/internal/core/inventory"
	"ecocook/internal/core/recipe"
	"ecocook/internal/core/shopping"
	"ecocook/internal/core/store"
	"ecocook/internal/core/store/storetest"
	"ecocook/internal/infrastructure/config"
	"ecocook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *store.Store
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := storetest.New(t)
	cat := catalog.New(st, nil, nil)
	if _, err := cat.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	tokens, err := auth.NewTokenManager("router-test-secret-0123456789", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	inv := inventory.NewService(st, fixedNow)

	if cfg == nil {
		cfg = testConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := SetupRouter(ctx, cfg, Services{
		DB:        st,
		Auth:      auth.NewService(st, tokens, bcrypt.MinCost),
		Inventory: inv,
		Recipes:   recipe.NewService(st, inv, cat, fixedNow),
		Shopping:  shopping.NewService(st),
	})
	return &testServer{t: t, router: router, store: st}
}

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{Version: "test"},
		Server:      config.ServerConfig{RequestTimeout: 5 * time.Second},
		DedupWindow: time.Minute,
	}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) expect(w *httptest.ResponseRecorder, status int, out interface{}) {
	s.t.Helper()
	if w.Code != status {
		s.t.Fatalf("status = %d, want %d; body = %s", w.Code, status, w.Body.String())
	}
	if out != nil {
		if err := common.ParseJSONBytes(w.Body.Bytes(), out); err != nil {
			s.t.Fatalf("decode %s: %v", w.Body.String(), err)
		}
	}
}

func (s *testServer) register(email string) string {
	s.t.Helper()
	var sess struct {
		Token string `json:"token"`
	}
	s.expect(s.do(http.MethodPost, "/api/v1/auth/register", "", `{"email":"`+email+`","password":"password123"}`), http.StatusCreated, &sess)
	return sess.Token
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		if w := s.do(http.MethodGet, path, "", ""); w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)

	var errResp common.ErrorResponse
	s.expect(s.do(http.MethodGet, "/api/v1/inventory", "", ""), http.StatusUnauthorized, &errResp)
	if errResp.Code != common.ErrCodeUnauthorized {
		t.Errorf("code = %q", errResp.Code)
	}
	s.expect(s.do(http.MethodGet, "/api/v1/inventory", "not-a-token", ""), http.StatusUnauthorized, nil)

	token := s.register("cook@example.com")
	s.expect(s.do(http.MethodPost, "/api/v1/auth/register", "", `{"email":"COOK@example.com","password":"password123"}`), http.StatusConflict, nil)
	s.expect(s.do(http.MethodPost, "/api/v1/auth/register", "", `{"email":"bad","password":"password123"}`), http.StatusUnprocessableEntity, &errResp)
	if errResp.Code != common.ErrCodeValidation {
		t.Errorf("validation code = %q", errResp.Code)
	}
	s.expect(s.do(http.MethodPost, "/api/v1/auth/register", "", `{not json`), http.StatusBadRequest, nil)

	s.expect(s.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"cook@example.com","password":"wrong-password"}`), http.StatusUnauthorized, nil)
	s.expect(s.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"cook@example.com","password":"password123"}`), http.StatusOK, nil)

	s.expect(s.do(http.MethodGet, "/api/v1/inventory", token, ""), http.StatusOK, nil)
	s.expect(s.do(http.MethodDelete, "/api/v1/auth/me", token, ""), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodGet, "/api/v1/inventory", token, ""), http.StatusUnauthorized, nil)
}

func TestInventoryEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("pantry@example.com")

	var batch struct {
		ID         uint    `json:"id"`
		Quantity   float64 `json:"quantity"`
		Ingredient struct {
			Name string `json:"name"`
			Unit string `json:"unit"`
		} `json:"ingredient"`
	}
	s.expect(s.do(http.MethodPost, "/api/v1/inventory", token, `{"name":"broccoli","quantity":0.5,"unit":"kg","expiry_date":"2024-03-04"}`), http.StatusCreated, &batch)
	if batch.Ingredient.Name != "Broccoli" || batch.Ingredient.Unit != "g" || batch.Quantity != 500 {
		t.Errorf("batch = %+v", batch)
	}

	s.expect(s.do(http.MethodPost, "/api/v1/inventory", token, `{"name":"Milk","quantity":1,"unit":"l","expiry_date":"2024-04-01"}`), http.StatusCreated, nil)
	s.expect(s.do(http.MethodPost, "/api/v1/inventory", token, `{"name":"Milk","quantity":1,"unit":"l","expiry_date":"03/01/2024"}`), http.StatusUnprocessableEntity, nil)
	s.expect(s.do(http.MethodPost, "/api/v1/inventory", token, `{"name":"Milk","quantity":1,"unit":"bucket"}`), http.StatusUnprocessableEntity, nil)

	var overview struct {
		Items    []struct{ ID uint } `json:"items"`
		Expiring []struct{ ID uint } `json:"expiring"`
	}
	s.expect(s.do(http.MethodGet, "/api/v1/inventory", token, ""), http.StatusOK, &overview)
	if len(overview.Items) != 2 || len(overview.Expiring) != 1 || overview.Expiring[0].ID != batch.ID {
		t.Errorf("overview = %+v", overview)
	}

	s.expect(s.do(http.MethodGet, "/api/v1/inventory?q=MIL", token, ""), http.StatusOK, &overview)
	if len(overview.Items) != 1 {
		t.Errorf("filtered items = %+v", overview.Items)
	}

	var expiring struct {
		Days  int                 `json:"days"`
		Items []struct{ ID uint } `json:"items"`
	}
	s.expect(s.do(http.MethodGet, "/api/v1/inventory/expiring?days=60", token, ""), http.StatusOK, &expiring)
	if expiring.Days != 60 || len(expiring.Items) != 2 {
		t.Errorf("expiring = %+v", expiring)
	}
	s.expect(s.do(http.MethodGet, "/api/v1/inventory/expiring?days=soon", token, ""), http.StatusUnprocessableEntity, nil)

	other := s.register("other@example.com")
	path := "/api/v1/inventory/" + itoa(batch.ID)
	s.expect(s.do(http.MethodDelete, path, other, ""), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodDelete, path, token, ""), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodDelete, path, token, ""), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodDelete, "/api/v1/inventory/abc", token, ""), http.StatusBadRequest, nil)

	var dict struct {
		Ingredients []struct{ Name string } `json:"ingredients"`
	}
	s.expect(s.do(http.MethodGet, "/api/v1/ingredients", token, ""), http.StatusOK, &dict)
	if len(dict.Ingredients) == 0 {
		t.Error("expected ingredient dictionary")
	}
}

func TestRecipeAndCookEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("chef@example.com")

	s.expect(s.do(http.MethodPost, "/api/v1/inventory", token, `{"name":"avocado","quantity":2,"unit":"piece","expiry_date":"2024-03-03"}`), http.StatusCreated, nil)
	s.expect(s.do(http.MethodPost, "/api/v1/inventory", token, `{"name":"bread","quantity":4,"unit":"slices"}`), http.StatusCreated, nil)

	var ranked struct {
		Sort    string `json:"sort"`
		Recipes []struct {
			Recipe struct {
				ID   uint   `json:"id"`
				Name string `json:"name"`
			} `json:"recipe"`
			InsufficientCount int `json:"insufficient_count"`
			DaysUntilExpiry   int `json:"days_until_expiry"`
		} `json:"recipes"`
	}
	s.expect(s.do(http.MethodGet, "/api/v1/recipes?sort=bogus", token, ""), http.StatusOK, &ranked)
	if ranked.Sort != "match" || len(ranked.Recipes) != 3 {
		t.Fatalf("ranked = %+v", ranked)
	}
	top := ranked.Recipes[0]
	if top.Recipe.Name != "Avocado Toast" || top.InsufficientCount != 3 || top.DaysUntilExpiry != 2 {
		t.Errorf("top = %+v", top)
	}
	toastPath := "/api/v1/recipes/" + itoa(top.Recipe.ID)

	var status struct {
		Ingredients []struct {
			IngredientName string `json:"ingredient_name"`
			IsSufficient   bool   `json:"is_sufficient"`
		} `json:"ingredients"`
	}
	s.expect(s.do(http.MethodGet, toastPath+"/status", token, ""), http.StatusOK, &status)
	if len(status.Ingredients) != 5 || !status.Ingredients[0].IsSufficient || status.Ingredients[2].IsSufficient {
		t.Errorf("status = %+v", status)
	}
	s.expect(s.do(http.MethodGet, toastPath, token, ""), http.StatusOK, nil)
	s.expect(s.do(http.MethodGet, "/api/v1/recipes/9999", token, ""), http.StatusNotFound, nil)

	var check struct {
		HadAll  bool                    `json:"had_all"`
		Missing []struct{ Name string } `json:"missing"`
	}
	s.expect(s.do(http.MethodGet, toastPath+"/cook-check", token, ""), http.StatusOK, &check)
	if check.HadAll || len(check.Missing) != 3 {
		t.Errorf("cook-check = %+v", check)
	}

	s.expect(s.do(http.MethodPost, toastPath+"/cook", token, `{"mode":"sometimes"}`), http.StatusUnprocessableEntity, nil)

	var cooked struct {
		HadAll      bool                    `json:"had_all"`
		QueuedItems []struct{ Name string } `json:"queued_items"`
		ListID      *uint                   `json:"shopping_list_id"`
	}
	s.expect(s.do(http.MethodPost, toastPath+"/cook", token, `{"mode":"missing"}`), http.StatusOK, &cooked)
	if cooked.HadAll || len(cooked.QueuedItems) != 3 || cooked.ListID == nil {
		t.Fatalf("cooked = %+v", cooked)
	}
	s.expect(s.do(http.MethodPost, toastPath+"/cook", token, `{"mode":"missing"}`), http.StatusTooManyRequests, nil)

	var list struct {
		Name  string `json:"name"`
		Items []struct {
			Quantity float64 `json:"quantity"`
		} `json:"items"`
	}
	s.expect(s.do(http.MethodGet, "/api/v1/shopping/"+itoa(*cooked.ListID), token, ""), http.StatusOK, &list)
	if list.Name != "Avocado Toast" || len(list.Items) != 3 {
		t.Errorf("list = %+v", list)
	}

	var history struct {
		History []struct {
			Mode   string `json:"mode"`
			HadAll bool   `json:"had_all"`
		} `json:"history"`
	}
	s.expect(s.do(http.MethodGet, "/api/v1/history", token, ""), http.StatusOK, &history)
	if len(history.History) != 1 || history.History[0].Mode != "missing" {
		t.Errorf("history = %+v", history)
	}

	var rated struct {
		AverageRating float64 `json:"average_rating"`
		RatingCount   int     `json:"rating_count"`
	}
	s.expect(s.do(http.MethodPost, toastPath+"/rate", token, `{"rating":4}`), http.StatusOK, &rated)
	if rated.AverageRating != 4 || rated.RatingCount != 1 {
		t.Errorf("rated = %+v", rated)
	}
	s.expect(s.do(http.MethodPost, toastPath+"/rate", token, `{"rating":6}`), http.StatusUnprocessableEntity, nil)

	s.expect(s.do(http.MethodGet, "/api/v1/recipes?sort=rating", token, ""), http.StatusOK, &ranked)
	if ranked.Recipes[0].Recipe.ID != top.Recipe.ID {
		t.Errorf("rating sort top = %+v", ranked.Recipes[0])
	}
}

func TestShoppingEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("shopper@example.com")

	var list struct {
		ID          uint `json:"id"`
		IsCompleted bool `json:"is_completed"`
	}
	s.expect(s.do(http.MethodPost, "/api/v1/shopping", token, `{"name":"Weekly"}`), http.StatusCreated, &list)
	s.expect(s.do(http.MethodPost, "/api/v1/shopping", token, `{"name":""}`), http.StatusUnprocessableEntity, nil)
	base := "/api/v1/shopping/" + itoa(list.ID)

	var item struct {
		IngredientID uint    `json:"ingredient_id"`
		Quantity     float64 `json:"quantity"`
		IsPurchased  bool    `json:"is_purchased"`
	}
	s.expect(s.do(http.MethodPost, base+"/items", token, `{"name":"Rice","quantity":500,"unit":"g"}`), http.StatusOK, &item)
	s.expect(s.do(http.MethodPost, base+"/items", token, `{"name":"rice","quantity":1,"unit":"kg"}`), http.StatusOK, &item)
	if item.Quantity != 1500 {
		t.Errorf("accumulated quantity = %v", item.Quantity)
	}

	itemPath := base + "/items/" + itoa(item.IngredientID)
	s.expect(s.do(http.MethodPost, itemPath+"/toggle", token, ""), http.StatusOK, &item)
	if !item.IsPurchased {
		t.Error("item should be purchased")
	}

	s.expect(s.do(http.MethodPost, base+"/complete", token, ""), http.StatusOK, &list)
	if !list.IsCompleted {
		t.Error("list should be completed")
	}

	other := s.register("intruder@example.com")
	s.expect(s.do(http.MethodGet, base, other, ""), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodDelete, itemPath, other, ""), http.StatusNotFound, nil)

	var lists struct {
		Lists []struct{ ID uint } `json:"lists"`
	}
	s.expect(s.do(http.MethodGet, "/api/v1/shopping", token, ""), http.StatusOK, &lists)
	if len(lists.Lists) != 1 {
		t.Errorf("lists = %+v", lists)
	}

	s.expect(s.do(http.MethodDelete, itemPath, token, ""), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodDelete, base, token, ""), http.StatusNoContent, nil)
	s.expect(s.do(http.MethodGet, base, token, ""), http.StatusNotFound, nil)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Hour}
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		s.expect(s.do(http.MethodGet, "/api/v1/inventory", "", ""), http.StatusUnauthorized, nil)
	}
	w := s.do(http.MethodGet, "/api/v1/inventory", "", "")
	s.expect(w, http.StatusTooManyRequests, nil)
	if w.Header().Get("Retry-After") != "3600" {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	// 健康檢查不受限流影響
	s.expect(s.do(http.MethodGet, "/live", "", ""), http.StatusOK, nil)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
