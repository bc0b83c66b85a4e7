package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/deepgram/shopfront/internal/infrastructure/redis"
	"github.com/deepgram/shopfront/internal/services/catalog"
	"github.com/deepgram/shopfront/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

const (
	CartLifetime = 30 * 24 * time.Hour
)

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrOutOfStock     = errors.New("product out of stock")
)

type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// State is one browsing session's cart and wishlist.
type State struct {
	Items    []Line   `json:"items"`
	Wishlist []string `json:"wishlist"`
}

func newState() *State {
	return &State{Items: []Line{}, Wishlist: []string{}}
}

type CartStore interface {
	Save(ctx context.Context, sessionID string, state *State) error
	Load(ctx context.Context, sessionID string) (*State, error)
	Delete(ctx context.Context, sessionID string) error
}

type RedisStore struct {
	redisService *redis.Service
}

type MemoryStore struct {
	mu    sync.RWMutex
	Carts map[string][]byte
}

type Service struct {
	mu      sync.Mutex
	store   CartStore
	catalog *catalog.Catalog
}

func NewService(redisService *redis.Service, cat *catalog.Catalog) *Service {
	logger.Info(logger.CART, "Initialising cart service")

	var store CartStore
	if redisService != nil {
		logger.Info(logger.CART, "Using Redis for cart storage")

		// Test Redis connection
		ctx := context.Background()
		if err := redisService.Ping(ctx); err != nil {
			logger.Error(logger.CART, "Redis connection failed: %v", err)
			logger.Warn(logger.CART, "Falling back to in-memory cart storage")
			store = newMemoryStore()
		} else {
			store = &RedisStore{redisService: redisService}
		}
	} else {
		logger.Info(logger.CART, "Using in-memory cart storage")
		store = newMemoryStore()
	}

	return &Service{store: store, catalog: cat}
}

// NewServiceWithStore is used by tests and alternative backends.
func NewServiceWithStore(store CartStore, cat *catalog.Catalog) *Service {
	return &Service{store: store, catalog: cat}
}

func newMemoryStore() *MemoryStore {
	return &MemoryStore{
		Carts: make(map[string][]byte),
	}
}

// Redis Store implementation
func (rs *RedisStore) Save(ctx context.Context, sessionID string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return rs.redisService.Set(ctx, "Cart:"+sessionID, string(data), CartLifetime)
}

func (rs *RedisStore) Load(ctx context.Context, sessionID string) (*State, error) {
	data, err := rs.redisService.Get(ctx, "Cart:"+sessionID)
	if errors.Is(err, goredis.Nil) {
		return newState(), nil
	}
	if err != nil {
		return nil, err
	}

	state := newState()
	if err := json.Unmarshal([]byte(data), state); err != nil {
		return nil, err
	}
	return state, nil
}

func (rs *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return rs.redisService.Delete(ctx, "Cart:"+sessionID)
}

// Memory Store implementation. States are stored serialised so callers never
// share slices with the store.
func (ms *MemoryStore) Save(ctx context.Context, sessionID string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.Carts[sessionID] = data
	return nil
}

func (ms *MemoryStore) Load(ctx context.Context, sessionID string) (*State, error) {
	ms.mu.RLock()
	data, exists := ms.Carts[sessionID]
	ms.mu.RUnlock()

	state := newState()
	if !exists {
		return state, nil
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (ms *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.Carts, sessionID)
	return nil
}

// Service methods

func (s *Service) Get(ctx context.Context, sessionID string) (*State, error) {
	return s.store.Load(ctx, sessionID)
}

// mutate loads, applies fn and saves on every change.
func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*State) error) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Add increases a line's quantity, capped at available stock.
func (s *Service) Add(ctx context.Context, sessionID, productID string, quantity int) (*State, error) {
	if quantity <= 0 {
		quantity = 1
	}
	product, ok := s.catalog.ByID(productID)
	if !ok {
		return nil, ErrUnknownProduct
	}
	if product.Stock == 0 {
		return nil, ErrOutOfStock
	}

	return s.mutate(ctx, sessionID, func(st *State) error {
		for i := range st.Items {
			if st.Items[i].ProductID == productID {
				st.Items[i].Quantity = min(st.Items[i].Quantity+quantity, product.Stock)
				return nil
			}
		}
		st.Items = append(st.Items, Line{ProductID: productID, Quantity: min(quantity, product.Stock)})
		return nil
	})
}

// SetQuantity replaces a line's quantity; zero or less removes it.
func (s *Service) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (*State, error) {
	product, ok := s.catalog.ByID(productID)
	if !ok {
		return nil, ErrUnknownProduct
	}

	return s.mutate(ctx, sessionID, func(st *State) error {
		for i := range st.Items {
			if st.Items[i].ProductID != productID {
				continue
			}
			if quantity <= 0 {
				st.Items = append(st.Items[:i], st.Items[i+1:]...)
			} else {
				st.Items[i].Quantity = min(quantity, product.Stock)
			}
			return nil
		}
		if quantity > 0 && product.Stock > 0 {
			st.Items = append(st.Items, Line{ProductID: productID, Quantity: min(quantity, product.Stock)})
		}
		return nil
	})
}

func (s *Service) Remove(ctx context.Context, sessionID, productID string) (*State, error) {
	return s.SetQuantity(ctx, sessionID, productID, 0)
}

// ToggleWishlist adds productID to the wishlist, or removes it when present.
func (s *Service) ToggleWishlist(ctx context.Context, sessionID, productID string) (*State, error) {
	if !s.catalog.Contains(productID) {
		return nil, ErrUnknownProduct
	}

	return s.mutate(ctx, sessionID, func(st *State) error {
		for i, id := range st.Wishlist {
			if id == productID {
				st.Wishlist = append(st.Wishlist[:i], st.Wishlist[i+1:]...)
				return nil
			}
		}
		st.Wishlist = append(st.Wishlist, productID)
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// Totals returns the item count and subtotal of state.
func (s *Service) Totals(state *State) (count int, subtotal float64) {
	for _, line := range state.Items {
		if p, ok := s.catalog.ByID(line.ProductID); ok {
			count += line.Quantity
			subtotal += p.Price * float64(line.Quantity)
		}
	}
	return count, subtotal
}
