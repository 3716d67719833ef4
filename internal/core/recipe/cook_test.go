package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecocook/internal/core/inventory"
	"ecocook/internal/core/models"
	"ecocook/internal/core/store"
	"ecocook/internal/core/store/storetest"
	"ecocook/internal/core/units"
	"ecocook/internal/pkg/common"
)

func TestPlanConsumption(t *testing.T) {
	batches := []models.InventoryBatch{
		{ID: 1, Quantity: 5, ExpiryDate: day("2024-01-10")},
		{ID: 2, Quantity: 3, ExpiryDate: day("2024-01-05")},
		{ID: 3, Quantity: 2},
	}

	tests := []struct {
		name      string
		needed    float64
		want      []Consumption
		shortfall float64
	}{
		{
			name:   "oldest first",
			needed: 8,
			want:   []Consumption{{BatchID: 2, Taken: 3, Remaining: 0}, {BatchID: 1, Taken: 5, Remaining: 0}},
		},
		{
			name:   "partial batch",
			needed: 4,
			want:   []Consumption{{BatchID: 2, Taken: 3, Remaining: 0}, {BatchID: 1, Taken: 1, Remaining: 4}},
		},
		{
			name:      "shortfall",
			needed:    15,
			want:      []Consumption{{BatchID: 2, Taken: 3}, {BatchID: 1, Taken: 5}, {BatchID: 3, Taken: 2}},
			shortfall: 5,
		},
		{
			name:      "no batches",
			needed:    1,
			shortfall: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := batches
			if tt.name == "no batches" {
				input = nil
			}
			plan, shortfall := PlanConsumption(input, tt.needed)
			if shortfall != tt.shortfall {
				t.Errorf("shortfall = %v, want %v", shortfall, tt.shortfall)
			}
			if len(plan) != len(tt.want) {
				t.Fatalf("plan = %+v, want %+v", plan, tt.want)
			}
			for i := range tt.want {
				if plan[i] != tt.want[i] {
					t.Errorf("plan[%d] = %+v, want %+v", i, plan[i], tt.want[i])
				}
			}
		})
	}

	if batches[0].ID != 1 || batches[0].Quantity != 5 {
		t.Error("PlanConsumption mutated its input")
	}
}

func TestParseCookMode(t *testing.T) {
	for in, want := range map[string]CookMode{"": CookNone, "none": CookNone, "Replace": CookReplace, " missing ": CookMissing} {
		got, err := ParseCookMode(in)
		if err != nil || got != want {
			t.Errorf("ParseCookMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseCookMode("all"); !common.IsValidationError(err) {
		t.Errorf("unknown mode err = %v", err)
	}
}

type cookFixture struct {
	st       *store.Store
	svc      *Service
	inv      *inventory.Service
	userID   uint
	recipeID uint
	cheeseID uint
}

// newCookFixture 建立一位使用者、三批起司 (5@01-10, 3@01-05, 2@無) 與需要 needed 克起司的食譜
func newCookFixture(t *testing.T, needed float64) *cookFixture {
	t.Helper()
	ctx := context.Background()
	now := func() time.Time { return today }

	st := storetest.New(t)
	user := storetest.MustUser(t, st, "chef@example.com")
	inv := inventory.NewService(st, now)

	for _, b := range []struct {
		qty    float64
		expiry string
	}{{5, "2024-01-10"}, {3, "2024-01-05"}, {2, ""}} {
		req := inventory.AddRequest{Name: "Cheese", Quantity: b.qty, Unit: "g"}
		if b.expiry != "" {
			req.ExpiryDate = day(b.expiry)
		}
		if _, err := inv.Add(ctx, user.ID, req); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	f := &cookFixture{st: st, inv: inv, userID: user.ID}
	err := st.Transaction(ctx, func(q *store.Queries) error {
		cheese, err := q.FindIngredientByName("cheese")
		if err != nil {
			return err
		}
		water, _, err := q.FindOrCreateIngredient("Water", units.Milliliter)
		if err != nil {
			return err
		}
		r := &models.Recipe{Name: "Cheese Toast", Ingredients: []models.RecipeIngredient{
			{IngredientID: cheese.ID, Quantity: needed, Unit: units.Gram},
			{IngredientID: water.ID, Quantity: 0, Unit: units.Milliliter},
		}}
		if err := q.CreateRecipe(r); err != nil {
			return err
		}
		f.recipeID, f.cheeseID = r.ID, cheese.ID
		return nil
	})
	if err != nil {
		t.Fatalf("seed recipe: %v", err)
	}

	f.svc = NewService(st, inv, nil, now)
	return f
}

func (f *cookFixture) remaining(t *testing.T) []float64 {
	t.Helper()
	batches, err := f.st.Queries(context.Background()).ListBatchesForIngredient(f.userID, f.cheeseID)
	if err != nil {
		t.Fatalf("ListBatchesForIngredient: %v", err)
	}
	inventory.SortByExpiry(batches)
	out := make([]float64, len(batches))
	for i, b := range batches {
		out[i] = b.Quantity
	}
	return out
}

func (f *cookFixture) lists(t *testing.T) []models.ShoppingList {
	t.Helper()
	lists, err := f.st.Queries(context.Background()).ListShoppingLists(f.userID)
	if err != nil {
		t.Fatalf("ListShoppingLists: %v", err)
	}
	return lists
}

func TestCookNoneConsumesOldestFirst(t *testing.T) {
	f := newCookFixture(t, 8)

	res, err := f.svc.Cook(context.Background(), f.userID, f.recipeID, CookNone)
	if err != nil {
		t.Fatalf("Cook: %v", err)
	}
	if !res.HadAll || len(res.QueuedItems) != 0 || res.ShoppingList != nil {
		t.Errorf("result = %+v", res)
	}
	if left := f.remaining(t); len(left) != 1 || left[0] != 2 {
		t.Errorf("remaining batches = %v, want [2]", left)
	}
	if lists := f.lists(t); len(lists) != 0 {
		t.Errorf("none mode created lists: %+v", lists)
	}
}

func TestCookPartialBatchIsDecremented(t *testing.T) {
	f := newCookFixture(t, 4)

	if _, err := f.svc.Cook(context.Background(), f.userID, f.recipeID, CookNone); err != nil {
		t.Fatalf("Cook: %v", err)
	}
	if left := f.remaining(t); len(left) != 2 || left[0] != 4 || left[1] != 2 {
		t.Errorf("remaining batches = %v, want [4 2]", left)
	}
}

func TestCookMissingQueuesShortfall(t *testing.T) {
	f := newCookFixture(t, 15)

	res, err := f.svc.Cook(context.Background(), f.userID, f.recipeID, CookMissing)
	if err != nil {
		t.Fatalf("Cook: %v", err)
	}
	if res.HadAll {
		t.Error("HadAll = true, want false")
	}
	if len(res.QueuedItems) != 1 || res.QueuedItems[0].Quantity != 5 || res.QueuedItems[0].Name != "Cheese" {
		t.Fatalf("queued = %+v", res.QueuedItems)
	}
	if left := f.remaining(t); len(left) != 0 {
		t.Errorf("remaining batches = %v, want none", left)
	}

	lists := f.lists(t)
	if len(lists) != 1 || lists[0].Name != "Cheese Toast" {
		t.Fatalf("lists = %+v", lists)
	}
	if items := lists[0].Items; len(items) != 1 || items[0].Quantity != 5 {
		t.Errorf("items = %+v", items)
	}
}

func TestCookReplaceQueuesFullQuantity(t *testing.T) {
	f := newCookFixture(t, 15)
	ctx := context.Background()

	res, err := f.svc.Cook(ctx, f.userID, f.recipeID, CookReplace)
	if err != nil {
		t.Fatalf("Cook: %v", err)
	}
	if res.HadAll || len(res.QueuedItems) != 1 || res.QueuedItems[0].Quantity != 15 {
		t.Fatalf("result = %+v", res)
	}

	// 再煮一次時累加至同一份清單
	if _, err := f.svc.Cook(ctx, f.userID, f.recipeID, CookReplace); err != nil {
		t.Fatalf("second Cook: %v", err)
	}
	lists := f.lists(t)
	if len(lists) != 1 || len(lists[0].Items) != 1 || lists[0].Items[0].Quantity != 30 {
		t.Errorf("lists = %+v", lists)
	}

	history, err := f.svc.History(ctx, f.userID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 || history[0].Mode != "replace" || history[0].Recipe.Name != "Cheese Toast" {
		t.Errorf("history = %+v", history)
	}
}

func TestCookReplaceQueuesEvenWhenSatisfied(t *testing.T) {
	f := newCookFixture(t, 8)

	res, err := f.svc.Cook(context.Background(), f.userID, f.recipeID, CookReplace)
	if err != nil {
		t.Fatalf("Cook: %v", err)
	}
	if !res.HadAll || len(res.QueuedItems) != 1 || res.QueuedItems[0].Quantity != 8 {
		t.Errorf("result = %+v", res)
	}
}

func TestCookCheckIsReadOnly(t *testing.T) {
	f := newCookFixture(t, 15)
	ctx := context.Background()

	check, err := f.svc.CookCheck(ctx, f.userID, f.recipeID)
	if err != nil {
		t.Fatalf("CookCheck: %v", err)
	}
	if check.HadAll || len(check.Missing) != 1 || check.Missing[0].Missing != 5 || check.Missing[0].Unit != units.Gram {
		t.Errorf("check = %+v", check)
	}
	if left := f.remaining(t); len(left) != 3 {
		t.Errorf("CookCheck changed inventory: %v", left)
	}
}

func TestCookCheckAgreesWithCookOnRepeatedIngredient(t *testing.T) {
	f := newCookFixture(t, 8)
	ctx := context.Background()

	var recipeID uint
	err := f.st.Transaction(ctx, func(q *store.Queries) error {
		r := &models.Recipe{Name: "Double Cheese", Ingredients: []models.RecipeIngredient{
			{IngredientID: f.cheeseID, Quantity: 6, Unit: units.Gram},
			{IngredientID: f.cheeseID, Quantity: 6, Unit: units.Gram},
		}}
		if err := q.CreateRecipe(r); err != nil {
			return err
		}
		recipeID = r.ID
		return nil
	})
	if err != nil {
		t.Fatalf("seed recipe: %v", err)
	}

	check, err := f.svc.CookCheck(ctx, f.userID, recipeID)
	if err != nil {
		t.Fatalf("CookCheck: %v", err)
	}
	if check.HadAll || len(check.Missing) != 1 || check.Missing[0].Missing != 2 {
		t.Errorf("check = %+v", check)
	}

	res, err := f.svc.Cook(ctx, f.userID, recipeID, CookMissing)
	if err != nil {
		t.Fatalf("Cook: %v", err)
	}
	if res.HadAll != check.HadAll {
		t.Errorf("cook HadAll = %v, check HadAll = %v", res.HadAll, check.HadAll)
	}
	if len(res.QueuedItems) != 1 || res.QueuedItems[0].Quantity != check.Missing[0].Missing {
		t.Errorf("queued = %+v, check missing = %+v", res.QueuedItems, check.Missing)
	}
}

func TestApplyConsumption(t *testing.T) {
	batches := []models.InventoryBatch{{ID: 1, Quantity: 3}, {ID: 2, Quantity: 5}, {ID: 3, Quantity: 2}}
	got := ApplyConsumption(batches, []Consumption{
		{BatchID: 1, Taken: 3, Remaining: 0},
		{BatchID: 2, Taken: 1, Remaining: 4},
	})
	if len(got) != 2 || got[0].ID != 2 || got[0].Quantity != 4 || got[1].ID != 3 || got[1].Quantity != 2 {
		t.Errorf("ApplyConsumption = %+v", got)
	}
	if batches[1].Quantity != 5 {
		t.Error("ApplyConsumption mutated its input")
	}
}

func TestCookErrors(t *testing.T) {
	f := newCookFixture(t, 8)
	ctx := context.Background()

	if _, err := f.svc.Cook(ctx, f.userID, 9999, CookNone); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("missing recipe err = %v", err)
	}
	if _, err := f.svc.Cook(ctx, f.userID, f.recipeID, "bogus"); !common.IsValidationError(err) {
		t.Errorf("bad mode err = %v", err)
	}
	if left := f.remaining(t); len(left) != 3 {
		t.Errorf("failed cook changed inventory: %v", left)
	}
}

func TestRateAndList(t *testing.T) {
	f := newCookFixture(t, 8)
	ctx := context.Background()

	if _, err := f.svc.Rate(ctx, f.recipeID, 6); !common.IsValidationError(err) {
		t.Errorf("rating 6 err = %v", err)
	}
	r, err := f.svc.Rate(ctx, f.recipeID, 4)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if r.AverageRating() != 4 {
		t.Errorf("average = %v", r.AverageRating())
	}

	ranked, err := f.svc.List(ctx, f.userID, SortByMatch)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ranked) != 1 || ranked[0].InsufficientCount != 0 || ranked[0].AverageRating != 4 {
		t.Errorf("ranked = %+v", ranked)
	}
	if ranked[0].DaysUntilExpiry != 2 {
		t.Errorf("days until expiry = %d, want 2", ranked[0].DaysUntilExpiry)
	}

	detail, err := f.svc.Get(ctx, f.userID, f.recipeID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(detail.Statuses) != 2 || detail.Statuses[0].AvailableQuantity != 10 {
		t.Errorf("statuses = %+v", detail.Statuses)
	}
}
