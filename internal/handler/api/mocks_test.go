package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/fakestore"
)

var errNotMocked = errors.New("not mocked")

// =============================================================================
// MOCK USER SERVICE
// =============================================================================

type mockUserService struct {
	RegisterFunc          func(ctx context.Context, in domain.RegisterInput) (*domain.User, error)
	AuthenticateFunc      func(ctx context.Context, email, password string) (*domain.User, error)
	GetFunc               func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListFunc              func(ctx context.Context) ([]domain.User, error)
	CreateFunc            func(ctx context.Context, in domain.CreateUserInput) (*domain.User, error)
	UpdateByUsernameFunc  func(ctx context.Context, username string, in domain.UpdateUserInput) (*domain.User, error)
	DeleteByUsernamesFunc func(ctx context.Context, usernames []string) (int, error)
}

func (m *mockUserService) Register(ctx context.Context, in domain.RegisterInput) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	return nil, errNotMocked
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return nil, errNotMocked
}

func (m *mockUserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errNotMocked
}

func (m *mockUserService) List(ctx context.Context) ([]domain.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, errNotMocked
}

func (m *mockUserService) Create(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return nil, errNotMocked
}

func (m *mockUserService) UpdateByUsername(ctx context.Context, username string, in domain.UpdateUserInput) (*domain.User, error) {
	if m.UpdateByUsernameFunc != nil {
		return m.UpdateByUsernameFunc(ctx, username, in)
	}
	return nil, errNotMocked
}

func (m *mockUserService) DeleteByUsernames(ctx context.Context, usernames []string) (int, error) {
	if m.DeleteByUsernamesFunc != nil {
		return m.DeleteByUsernamesFunc(ctx, usernames)
	}
	return 0, errNotMocked
}

// =============================================================================
// MOCK TOKEN ISSUER
// =============================================================================

type mockTokenIssuer struct {
	issued []*domain.Principal
	err    error
}

func (m *mockTokenIssuer) Issue(p *domain.Principal) (string, time.Time, error) {
	if m.err != nil {
		return "", time.Time{}, m.err
	}
	m.issued = append(m.issued, p)
	return "token-for-" + p.Username, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

// =============================================================================
// MOCK CART SERVICE
// =============================================================================

type mockCartService struct {
	GetCartFunc        func(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	AddItemFunc        func(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.Cart, error)
	UpdateItemFunc     func(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.Cart, error)
	RemoveItemFunc     func(ctx context.Context, userID, productID uuid.UUID) (*domain.Cart, error)
	ClearCartFunc      func(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	CalculateTotalFunc func(ctx context.Context, userID uuid.UUID, couponCode string) (*domain.CartTotal, error)
}

func (m *mockCartService) GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	if m.GetCartFunc != nil {
		return m.GetCartFunc(ctx, userID)
	}
	return nil, errNotMocked
}

func (m *mockCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.Cart, error) {
	if m.AddItemFunc != nil {
		return m.AddItemFunc(ctx, userID, productID, quantity)
	}
	return nil, errNotMocked
}

func (m *mockCartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.Cart, error) {
	if m.UpdateItemFunc != nil {
		return m.UpdateItemFunc(ctx, userID, productID, quantity)
	}
	return nil, errNotMocked
}

func (m *mockCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*domain.Cart, error) {
	if m.RemoveItemFunc != nil {
		return m.RemoveItemFunc(ctx, userID, productID)
	}
	return nil, errNotMocked
}

func (m *mockCartService) ClearCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	if m.ClearCartFunc != nil {
		return m.ClearCartFunc(ctx, userID)
	}
	return nil, errNotMocked
}

func (m *mockCartService) CalculateTotal(ctx context.Context, userID uuid.UUID, couponCode string) (*domain.CartTotal, error) {
	if m.CalculateTotalFunc != nil {
		return m.CalculateTotalFunc(ctx, userID, couponCode)
	}
	return nil, errNotMocked
}

// =============================================================================
// MOCK PRODUCT SERVICE
// =============================================================================

type mockProductService struct {
	ListFunc           func(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error)
	GetFunc            func(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	SearchFunc         func(ctx context.Context, term string) ([]domain.Product, error)
	FeaturedFunc       func(ctx context.Context) ([]domain.Product, error)
	ListByCategoryFunc func(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error)
	CreateFunc         func(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateFunc         func(ctx context.Context, id uuid.UUID, in domain.ProductInput) (*domain.Product, error)
	DeleteFunc         func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProductService) List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, errNotMocked
}

func (m *mockProductService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errNotMocked
}

func (m *mockProductService) Search(ctx context.Context, term string) ([]domain.Product, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, term)
	}
	return nil, errNotMocked
}

func (m *mockProductService) Featured(ctx context.Context) ([]domain.Product, error) {
	if m.FeaturedFunc != nil {
		return m.FeaturedFunc(ctx)
	}
	return nil, errNotMocked
}

func (m *mockProductService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error) {
	if m.ListByCategoryFunc != nil {
		return m.ListByCategoryFunc(ctx, categoryID)
	}
	return nil, errNotMocked
}

func (m *mockProductService) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return nil, errNotMocked
}

func (m *mockProductService) Update(ctx context.Context, id uuid.UUID, in domain.ProductInput) (*domain.Product, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, in)
	}
	return nil, errNotMocked
}

func (m *mockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errNotMocked
}

// =============================================================================
// MOCK CATEGORY SERVICE
// =============================================================================

type mockCategoryService struct {
	ListFunc   func(ctx context.Context) ([]domain.Category, error)
	GetFunc    func(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	CreateFunc func(ctx context.Context, in domain.CategoryInput) (*domain.Category, error)
	UpdateFunc func(ctx context.Context, id uuid.UUID, in domain.CategoryInput) (*domain.Category, error)
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCategoryService) List(ctx context.Context) ([]domain.Category, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, errNotMocked
}

func (m *mockCategoryService) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errNotMocked
}

func (m *mockCategoryService) Create(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return nil, errNotMocked
}

func (m *mockCategoryService) Update(ctx context.Context, id uuid.UUID, in domain.CategoryInput) (*domain.Category, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, in)
	}
	return nil, errNotMocked
}

func (m *mockCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errNotMocked
}

// =============================================================================
// MOCK ORDER SERVICE
// =============================================================================

type mockOrderService struct {
	PlaceFunc        func(ctx context.Context, userID uuid.UUID, in domain.PlaceOrderInput) (*domain.Order, error)
	ListForUserFunc  func(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)
	ListAllFunc      func(ctx context.Context) ([]domain.Order, error)
	GetFunc          func(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateStatusFunc func(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

func (m *mockOrderService) Place(ctx context.Context, userID uuid.UUID, in domain.PlaceOrderInput) (*domain.Order, error) {
	if m.PlaceFunc != nil {
		return m.PlaceFunc(ctx, userID, in)
	}
	return nil, errNotMocked
}

func (m *mockOrderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx, userID)
	}
	return nil, errNotMocked
}

func (m *mockOrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, errNotMocked
}

func (m *mockOrderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errNotMocked
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, errNotMocked
}

// =============================================================================
// MOCK SYNCER / CATALOG
// =============================================================================

type mockSyncer struct {
	SyncCategoriesFunc func(ctx context.Context, actor *domain.Principal) (int, error)
	SyncProductsFunc   func(ctx context.Context, actor *domain.Principal) (int, error)
}

func (m *mockSyncer) SyncCategories(ctx context.Context, actor *domain.Principal) (int, error) {
	if m.SyncCategoriesFunc != nil {
		return m.SyncCategoriesFunc(ctx, actor)
	}
	return 0, errNotMocked
}

func (m *mockSyncer) SyncProducts(ctx context.Context, actor *domain.Principal) (int, error) {
	if m.SyncProductsFunc != nil {
		return m.SyncProductsFunc(ctx, actor)
	}
	return 0, errNotMocked
}

type mockCatalog struct {
	products   []fakestore.Product
	categories []string
	err        error
}

func (m *mockCatalog) GetProducts(ctx context.Context) ([]fakestore.Product, error) {
	return m.products, m.err
}

func (m *mockCatalog) GetProduct(ctx context.Context, id int) (*fakestore.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return nil, fakestore.ErrProductNotFound
}

func (m *mockCatalog) GetCategories(ctx context.Context) ([]string, error) {
	return m.categories, m.err
}

func (m *mockCatalog) GetProductsByCategory(ctx context.Context, category string) ([]fakestore.Product, error) {
	var out []fakestore.Product
	for _, p := range m.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, m.err
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

func principal(role domain.Role) *domain.Principal {
	return &domain.Principal{
		UserID:   uuid.New(),
		Email:    strings.ToLower(string(role)) + "@example.com",
		Username: strings.ToLower(string(role)),
		Roles:    []domain.Role{role},
	}
}

// newRequest builds a request with an optional JSON body and caller.
func newRequest(method, target, body string, caller *domain.Principal) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != nil {
		req = req.WithContext(domain.NewContextWithPrincipal(req.Context(), caller))
	}
	return req
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Code
}

func syncCount(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Count *int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	require.NotNil(t, body.Count, "count missing: %s", rec.Body.String())
	return *body.Count
}

func errorFields(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body struct {
		Error struct {
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Fields
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
