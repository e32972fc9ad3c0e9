package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/fakestore"
)

// money renders an amount as a JSON number with two decimal places.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func moneyPtr(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	m := money(*d)
	return &m
}

// =============================================================================
// USERS
// =============================================================================

type userResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	FullName    string     `json:"fullName"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Role:        u.Role.String(),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

// =============================================================================
// CATALOG
// =============================================================================

type categoryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	IsActive     bool      `json:"isActive"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		IsActive:     c.IsActive,
		ProductCount: c.ProductCount,
		CreatedAt:    c.CreatedAt,
	}
}

type productResponse struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Price         json.Number `json:"price"`
	ImageURL      string      `json:"imageUrl"`
	CategoryID    uuid.UUID   `json:"categoryId"`
	CategoryName  string      `json:"categoryName"`
	StockQuantity int         `json:"stockQuantity"`
	IsActive      bool        `json:"isActive"`
	AverageRating float64     `json:"averageRating"`
	ReviewCount   int         `json:"reviewCount"`
	ExternalID    *string     `json:"externalId,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Price:         money(p.Price),
		ImageURL:      p.ImageURL,
		CategoryID:    p.CategoryID,
		CategoryName:  p.CategoryName,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		AverageRating: p.AverageRating(),
		ReviewCount:   p.ReviewCount(),
		ExternalID:    p.ExternalID,
		CreatedAt:     p.CreatedAt,
	}
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	return out
}

type productPageResponse struct {
	Items      []productResponse `json:"items"`
	TotalCount int               `json:"totalCount"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

type countResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type fakeStoreProductResponse struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Image       string      `json:"image"`
	Rating      struct {
		Rate  json.Number `json:"rate"`
		Count int         `json:"count"`
	} `json:"rating"`
}

func toFakeStoreProductResponse(p *fakestore.Product) fakeStoreProductResponse {
	out := fakeStoreProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       money(p.Price),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
	}
	out.Rating.Rate = json.Number(p.Rating.Rate.String())
	out.Rating.Count = p.Rating.Count
	return out
}

// =============================================================================
// CART
// =============================================================================

type cartItemResponse struct {
	ProductID     uuid.UUID   `json:"productId"`
	ProductTitle  string      `json:"productTitle"`
	ImageURL      string      `json:"imageUrl"`
	Quantity      int         `json:"quantity"`
	UnitPrice     json.Number `json:"unitPrice"`
	LineTotal     json.Number `json:"lineTotal"`
	StockQuantity int         `json:"stockQuantity"`
	AddedAt       time.Time   `json:"addedAt"`
}

type cartResponse struct {
	ID        uuid.UUID          `json:"id"`
	Items     []cartItemResponse `json:"items"`
	ItemCount int                `json:"itemCount"`
	SubTotal  json.Number        `json:"subTotal"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func toCartResponse(c *domain.Cart) cartResponse {
	out := cartResponse{
		ID:        c.ID,
		Items:     make([]cartItemResponse, len(c.Items)),
		ItemCount: c.ItemCount(),
		UpdatedAt: c.UpdatedAt,
	}
	sub := decimal.Zero
	for i, item := range c.Items {
		line := item.LineTotal()
		sub = sub.Add(line)
		out.Items[i] = cartItemResponse{
			ProductID:     item.ProductID,
			ProductTitle:  item.ProductTitle,
			ImageURL:      item.ImageURL,
			Quantity:      item.Quantity,
			UnitPrice:     money(item.UnitPrice),
			LineTotal:     money(line),
			StockQuantity: item.StockQuantity,
			AddedAt:       item.AddedAt,
		}
	}
	out.SubTotal = money(sub)
	return out
}

type cartTotalResponse struct {
	SubTotal        json.Number `json:"subTotal"`
	DiscountAmount  json.Number `json:"discountAmount"`
	Total           json.Number `json:"total"`
	CouponCode      *string     `json:"couponCode"`
	CouponApplied   bool        `json:"couponApplied"`
	CouponRejection string      `json:"couponRejection,omitempty"`
}

func toCartTotalResponse(t *domain.CartTotal) cartTotalResponse {
	out := cartTotalResponse{
		SubTotal:        money(t.SubTotal),
		DiscountAmount:  money(t.DiscountAmount),
		Total:           money(t.Total),
		CouponApplied:   t.CouponApplied,
		CouponRejection: t.CouponRejection,
	}
	if t.CouponCode != "" {
		code := t.CouponCode
		out.CouponCode = &code
	}
	return out
}

// =============================================================================
// COUPONS
// =============================================================================

type couponResponse struct {
	ID                 uuid.UUID    `json:"id"`
	Code               string       `json:"code"`
	Description        string       `json:"description"`
	DiscountPercentage json.Number  `json:"discountPercentage"`
	MaxDiscountAmount  *json.Number `json:"maxDiscountAmount"`
	MinimumOrderAmount *json.Number `json:"minimumOrderAmount"`
	ValidFrom          time.Time    `json:"validFrom"`
	ValidTo            time.Time    `json:"validTo"`
	UsageLimit         int          `json:"usageLimit"`
	UsedCount          int          `json:"usedCount"`
	IsActive           bool         `json:"isActive"`
}

func toCouponResponse(c *domain.Coupon) couponResponse {
	return couponResponse{
		ID:                 c.ID,
		Code:               c.Code,
		Description:        c.Description,
		DiscountPercentage: money(c.DiscountPercentage),
		MaxDiscountAmount:  moneyPtr(c.MaxDiscountAmount),
		MinimumOrderAmount: moneyPtr(c.MinimumOrderAmount),
		ValidFrom:          c.ValidFrom,
		ValidTo:            c.ValidTo,
		UsageLimit:         c.UsageLimit,
		UsedCount:          c.UsedCount,
		IsActive:           c.IsActive,
	}
}

type couponPreviewResponse struct {
	Code           string      `json:"code"`
	Valid          bool        `json:"valid"`
	Reason         string      `json:"reason,omitempty"`
	DiscountAmount json.Number `json:"discountAmount"`
	Total          json.Number `json:"total"`
}

// =============================================================================
// ORDERS
// =============================================================================

type orderItemResponse struct {
	ProductID    uuid.UUID   `json:"productId"`
	ProductTitle string      `json:"productTitle"`
	Quantity     int         `json:"quantity"`
	UnitPrice    json.Number `json:"unitPrice"`
	LineTotal    json.Number `json:"lineTotal"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	UserID          uuid.UUID           `json:"userId"`
	Status          string              `json:"status"`
	SubTotal        json.Number         `json:"subTotal"`
	DiscountAmount  json.Number         `json:"discountAmount"`
	Total           json.Number         `json:"total"`
	CouponCode      *string             `json:"couponCode"`
	ShippingAddress string              `json:"shippingAddress"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	out := orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Status:          string(o.Status),
		SubTotal:        money(o.SubTotal),
		DiscountAmount:  money(o.DiscountAmount),
		Total:           money(o.Total),
		CouponCode:      o.CouponCode,
		ShippingAddress: o.ShippingAddress,
		Items:           make([]orderItemResponse, len(o.Items)),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for i, item := range o.Items {
		out.Items[i] = orderItemResponse{
			ProductID:    item.ProductID,
			ProductTitle: item.ProductTitle,
			Quantity:     item.Quantity,
			UnitPrice:    money(item.UnitPrice),
			LineTotal:    money(item.LineTotal),
		}
	}
	return out
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	return out
}

// =============================================================================
// REVIEWS & WISHLIST
// =============================================================================

type reviewResponse struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"productId"`
	UserID     uuid.UUID `json:"userId"`
	Username   string    `json:"username"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toReviewResponse(r *domain.Review) reviewResponse {
	return reviewResponse{
		ID:         r.ID,
		ProductID:  r.ProductID,
		UserID:     r.UserID,
		Username:   r.Username,
		Rating:     r.Rating,
		Comment:    r.Comment,
		IsApproved: r.IsApproved,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toReviewResponses(reviews []domain.Review) []reviewResponse {
	out := make([]reviewResponse, len(reviews))
	for i := range reviews {
		out[i] = toReviewResponse(&reviews[i])
	}
	return out
}

type wishlistItemResponse struct {
	ProductID    uuid.UUID   `json:"productId"`
	ProductTitle string      `json:"productTitle"`
	Price        json.Number `json:"price"`
	ImageURL     string      `json:"imageUrl"`
	IsActive     bool        `json:"isActive"`
	AddedAt      time.Time   `json:"addedAt"`
}
