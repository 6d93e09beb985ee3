package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

type favoriteKey struct {
	userID    int64
	productID int64
}

// MemoryStore is an embedded Store kept in process memory. Every method
// returns copies, so callers never share state with the store.
type MemoryStore struct {
	mu sync.RWMutex

	users     map[int64]*models.User
	emails    map[string]int64
	products  map[int64]*models.Product
	favorites map[favoriteKey]struct{}
	orders    map[int64]*models.Order

	nextUserID    int64
	nextProductID int64
	nextOrderID   int64
	nextItemID    int64

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[int64]*models.User),
		emails:    make(map[string]int64),
		products:  make(map[int64]*models.Product),
		favorites: make(map[favoriteKey]struct{}),
		orders:    make(map[int64]*models.Order),
		now:       time.Now,
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// --- users ---

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return s.copyUser(s.users[id]), nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return s.copyUser(u), nil
}

// copyUser fills the favorites count. Callers hold the lock.
func (s *MemoryStore) copyUser(u *models.User) *models.User {
	out := *u
	out.Favoritos = 0
	for key := range s.favorites {
		if key.userID == u.ID {
			out.Favoritos++
		}
	}
	return &out
}

func (s *MemoryStore) CreateUser(ctx context.Context, name, email string, userType models.UserType) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.emails[key]; exists {
		return nil, errors.NewValidationError("email", "email already registered")
	}

	s.nextUserID++
	u := &models.User{
		ID:         s.nextUserID,
		Name:       name,
		Email:      email,
		Type:       userType,
		Economizou: decimal.Zero,
		CreatedAt:  s.now(),
	}
	s.users[u.ID] = u
	s.emails[key] = u.ID

	out := *u
	return &out, nil
}

func (s *MemoryStore) FirstPharmacyID(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first int64
	for id, u := range s.users {
		if u.Type == models.UserTypePharmacy && (first == 0 || id < first) {
			first = id
		}
	}
	if first == 0 {
		return 0, errors.ErrNotFound
	}
	return first, nil
}

func (s *MemoryStore) RecordCheckout(ctx context.Context, userID int64, orders int, saved decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return errors.ErrNotFound
	}
	u.Pedidos += orders
	u.Economizou = u.Economizou.Add(saved)
	return nil
}

// --- products ---

func (s *MemoryStore) SearchProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(filter.Query)
	return s.collectProducts(filter.UserID, func(p *models.Product) bool {
		if !strings.Contains(strings.ToLower(p.Name), query) {
			return false
		}
		if filter.Category != "" && p.Category != filter.Category {
			return false
		}
		if filter.MaxPrice.IsPositive() && p.Price.GreaterThan(filter.MaxPrice) {
			return false
		}
		return true
	}), nil
}

func (s *MemoryStore) GetFeaturedProducts(ctx context.Context, limit int) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.collectProducts(0, func(p *models.Product) bool {
		return p.Discount().IsPositive()
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Discount().GreaterThan(out[j].Discount())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return s.annotate(p, 0), nil
}

func (s *MemoryStore) GetPharmacyProducts(ctx context.Context, pharmacyID int64) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectProducts(0, func(p *models.Product) bool {
		return p.PharmacyID == pharmacyID
	}), nil
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range s.products {
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *MemoryStore) AddProduct(ctx context.Context, pharmacyID int64, in *models.ProductInput) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[pharmacyID]; !ok || u.Type != models.UserTypePharmacy {
		return nil, errors.ErrNotFound
	}

	s.nextProductID++
	p := &models.Product{
		ID:         s.nextProductID,
		PharmacyID: pharmacyID,
		Name:       in.Name,
		Category:   in.Category,
		Price:      in.Price,
		OldPrice:   in.OldPrice,
		Image:      in.Image,
	}
	s.products[p.ID] = p
	return s.annotate(p, 0), nil
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, id int64, in *models.ProductInput) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	p.Name = in.Name
	p.Category = in.Category
	p.Price = in.Price
	p.OldPrice = in.OldPrice
	p.Image = in.Image
	return s.annotate(p, 0), nil
}

func (s *MemoryStore) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return errors.ErrNotFound
	}
	delete(s.products, id)
	for key := range s.favorites {
		if key.productID == id {
			delete(s.favorites, key)
		}
	}
	return nil
}

// collectProducts returns annotated copies of matching products by id.
// Callers hold the lock.
func (s *MemoryStore) collectProducts(userID int64, match func(*models.Product) bool) []*models.Product {
	ids := make([]int64, 0, len(s.products))
	for id, p := range s.products {
		if match(p) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*models.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.annotate(s.products[id], userID))
	}
	return out
}

func (s *MemoryStore) annotate(p *models.Product, userID int64) *models.Product {
	out := *p
	if u, ok := s.users[p.PharmacyID]; ok {
		out.PharmacyName = u.Name
	}
	if userID != 0 {
		_, out.IsFavorite = s.favorites[favoriteKey{userID: userID, productID: p.ID}]
	}
	return &out
}

// --- orders ---

func (s *MemoryStore) CreateOrderGroup(ctx context.Context, userID int64, group *models.OrderGroup) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOrderID++
	order := &models.Order{
		ID:         s.nextOrderID,
		UserID:     userID,
		PharmacyID: group.PharmacyID,
		Total:      group.Total,
		Status:     models.OrderStatusPreparando,
		Date:       s.now(),
		Items:      make([]models.OrderItem, 0, len(group.Items)),
	}
	for _, line := range group.Items {
		s.nextItemID++
		order.Items = append(order.Items, models.OrderItem{
			ID:        s.nextItemID,
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}
	s.orders[order.ID] = order
	return s.copyOrder(order), nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return s.copyOrder(o), nil
}

func (s *MemoryStore) GetClientOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectOrders(func(o *models.Order) bool { return o.UserID == userID }), nil
}

func (s *MemoryStore) GetPharmacyOrders(ctx context.Context, pharmacyID int64) ([]*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectOrders(func(o *models.Order) bool { return o.PharmacyID == pharmacyID }), nil
}

func (s *MemoryStore) RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, errors.ErrNotFound
	}
	for i, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:i:i], o.Items[i+1:]...)
			o.Total = o.Total.Sub(item.LineTotal())
			removed := item
			return &removed, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return errors.ErrNotFound
	}
	o.Status = status
	return nil
}

// collectOrders returns newest first. Callers hold the lock.
func (s *MemoryStore) collectOrders(match func(*models.Order) bool) []*models.Order {
	out := make([]*models.Order, 0)
	for _, o := range s.orders {
		if match(o) {
			out = append(out, s.copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *MemoryStore) copyOrder(o *models.Order) *models.Order {
	out := *o
	out.Items = make([]models.OrderItem, len(o.Items))
	copy(out.Items, o.Items)
	if u, ok := s.users[o.UserID]; ok {
		out.ClientName = u.Name
	}
	if u, ok := s.users[o.PharmacyID]; ok {
		out.PharmacyName = u.Name
	}
	return &out
}

// --- favorites ---

func (s *MemoryStore) ToggleFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return false, errors.ErrNotFound
	}

	key := favoriteKey{userID: userID, productID: productID}
	if _, ok := s.favorites[key]; ok {
		delete(s.favorites, key)
		return false, nil
	}
	s.favorites[key] = struct{}{}
	return true, nil
}

func (s *MemoryStore) GetFavorites(ctx context.Context, userID int64) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collectProducts(userID, func(p *models.Product) bool {
		_, ok := s.favorites[favoriteKey{userID: userID, productID: p.ID}]
		return ok
	}), nil
}
