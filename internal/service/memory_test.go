package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/domain"
	"github.com/dancehub/event-registration/internal/repository"
)

// memoryDB is an in-memory stand-in for Postgres. WithinTx serialises
// transactions and restores a snapshot when fn fails.
type memoryDB struct {
	mu           sync.Mutex
	products     map[uuid.UUID]domain.Product
	participants map[uuid.UUID]domain.Participant
	lineItems    []domain.ParticipantProduct
	orders       map[uuid.UUID]domain.Order

	reserveErr error
	commits    int
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		products:     map[uuid.UUID]domain.Product{},
		participants: map[uuid.UUID]domain.Participant{},
		orders:       map[uuid.UUID]domain.Order{},
	}
}

func (db *memoryDB) addProduct(p domain.Product) domain.Product {
	db.mu.Lock()
	defer db.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	db.products[p.ID] = p
	return p
}

// addDirector seeds a confirmed staff row, as event creation does.
func (db *memoryDB) addDirector(eventID, userID uuid.UUID) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p := domain.Participant{
		ID:        uuid.New(),
		EventID:   eventID,
		UserID:    userID,
		Role:      "staff",
		EventRole: domain.RoleEventDirector,
		Status:    domain.ParticipantConfirmed,
	}
	db.participants[p.ID] = p
}

func (db *memoryDB) product(id uuid.UUID) domain.Product {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.products[id]
}

func (db *memoryDB) addOrder(o domain.Order) domain.Order {
	db.mu.Lock()
	defer db.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	db.orders[o.ID] = o
	return o
}

func (db *memoryDB) order(id uuid.UUID) domain.Order {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.orders[id]
}

func (db *memoryDB) participantCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.participants)
}

func (db *memoryDB) itemsOf(participantID uuid.UUID) []domain.ParticipantProduct {
	var items []domain.ParticipantProduct
	for _, item := range db.lineItems {
		if item.ParticipantID == participantID {
			items = append(items, item)
		}
	}
	return items
}

type memorySnapshot struct {
	products     map[uuid.UUID]domain.Product
	participants map[uuid.UUID]domain.Participant
	lineItems    []domain.ParticipantProduct
	orders       map[uuid.UUID]domain.Order
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memoryDB) WithinTx(ctx context.Context, fn func(store repository.Store) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	snap := memorySnapshot{
		products:     cloneMap(db.products),
		participants: cloneMap(db.participants),
		lineItems:    append([]domain.ParticipantProduct(nil), db.lineItems...),
		orders:       cloneMap(db.orders),
	}
	if err := fn(memoryStore{db: db}); err != nil {
		db.products = snap.products
		db.participants = snap.participants
		db.lineItems = snap.lineItems
		db.orders = snap.orders
		return err
	}
	db.commits++
	return nil
}

// memoryStore runs with memoryDB.mu held.
type memoryStore struct {
	db *memoryDB
}

func (s memoryStore) InsertParticipant(_ context.Context, p domain.Participant) (domain.Participant, error) {
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	s.db.participants[p.ID] = p
	return p, nil
}

func (s memoryStore) UpdateParticipantStatus(_ context.Context, id uuid.UUID, status domain.ParticipantStatus) error {
	p := s.db.participants[id]
	p.Status = status
	s.db.participants[id] = p
	return nil
}

func (s memoryStore) FindProducts(_ context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]domain.Product, error) {
	var products []domain.Product
	for _, id := range ids {
		if p, ok := s.db.products[id]; ok && p.EventID == eventID {
			products = append(products, p)
		}
	}
	return products, nil
}

func (s memoryStore) ReserveInventory(_ context.Context, id uuid.UUID, quantity int, now time.Time) error {
	if s.db.reserveErr != nil {
		return s.db.reserveErr
	}
	p := s.db.products[id]
	if !p.IsActive || !p.IsOnSale(now) {
		return repository.ErrInventoryConflict
	}
	if p.QuantityTotal != nil && p.QuantitySold+quantity > *p.QuantityTotal {
		return repository.ErrInventoryConflict
	}
	p.QuantitySold += quantity
	s.db.products[id] = p
	return nil
}

func (s memoryStore) InsertLineItems(_ context.Context, items []domain.ParticipantProduct) ([]domain.ParticipantProduct, error) {
	for i := range items {
		items[i].ID = uuid.New()
		items[i].CreatedAt = time.Now().UTC()
	}
	s.db.lineItems = append(s.db.lineItems, items...)
	return items, nil
}

func (s memoryStore) UpdateLineItemStatuses(_ context.Context, participantID uuid.UUID, payment domain.LineItemPaymentStatus, confirmation domain.LineItemConfirmationStatus) error {
	for i, item := range s.db.lineItems {
		if item.ParticipantID != participantID {
			continue
		}
		if payment != "" {
			s.db.lineItems[i].PaymentStatus = payment
		}
		if confirmation != "" {
			s.db.lineItems[i].ConfirmationStatus = confirmation
		}
	}
	return nil
}

func (s memoryStore) InsertOrder(_ context.Context, o domain.Order) (domain.Order, error) {
	if o.IdempotencyKey != "" {
		for _, existing := range s.db.orders {
			if existing.UserID == o.UserID && existing.IdempotencyKey == o.IdempotencyKey {
				return domain.Order{}, repository.ErrDuplicateIdempotencyKey
			}
		}
	}
	o.ID = uuid.New()
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	s.db.orders[o.ID] = o
	return o, nil
}

func (s memoryStore) CompareAndSetOrderStatus(_ context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	o, ok := s.db.orders[id]
	if !ok || o.Status != from {
		return repository.ErrStatusChanged
	}
	o.Status = to
	s.db.orders[id] = o
	return nil
}

type memoryOrders struct {
	db *memoryDB
}

func (r memoryOrders) FindByID(_ context.Context, id uuid.UUID) (domain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok {
		return domain.Order{}, repository.ErrNotFound
	}
	return o, nil
}

func (r memoryOrders) FindByPaymentIntentID(_ context.Context, intentID string) (domain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.orders {
		if o.PaymentIntentID == intentID {
			return o, nil
		}
	}
	return domain.Order{}, repository.ErrNotFound
}

func (r memoryOrders) FindByParticipantID(_ context.Context, participantID uuid.UUID) (domain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.orders {
		if o.ParticipantID == participantID {
			return o, nil
		}
	}
	return domain.Order{}, repository.ErrNotFound
}

func (r memoryOrders) FindByIdempotencyKey(_ context.Context, userID uuid.UUID, key string) (domain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.orders {
		if o.UserID == userID && o.IdempotencyKey == key {
			return o, nil
		}
	}
	return domain.Order{}, repository.ErrNotFound
}

func (r memoryOrders) BindPaymentIntent(_ context.Context, id uuid.UUID, intentID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if o.PaymentIntentID != "" && o.PaymentIntentID != intentID {
		return repository.ErrPaymentIntentBound
	}
	o.PaymentIntentID = intentID
	r.db.orders[id] = o
	return nil
}

type memoryParticipants struct {
	db *memoryDB
}

func (r memoryParticipants) FindByID(_ context.Context, id uuid.UUID) (domain.Participant, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.participants[id]
	if !ok {
		return domain.Participant{}, repository.ErrNotFound
	}
	return p, nil
}

func (r memoryParticipants) FindLineItems(_ context.Context, participantID uuid.UUID) ([]domain.ParticipantProduct, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.itemsOf(participantID), nil
}

func (r memoryParticipants) IsEventDirector(_ context.Context, eventID, userID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.participants {
		if p.EventID == eventID && p.UserID == userID && p.IsEventDirector() {
			return true, nil
		}
	}
	return false, nil
}

type memoryProducts struct {
	db *memoryDB
}

func (r memoryProducts) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	return r.db.addProduct(p), nil
}

func (r memoryProducts) FindByID(_ context.Context, eventID, productID uuid.UUID) (domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[productID]
	if !ok || p.EventID != eventID {
		return domain.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (r memoryProducts) FindByEvent(_ context.Context, eventID uuid.UUID) ([]domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var products []domain.Product
	for _, p := range r.db.products {
		if p.EventID == eventID {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r memoryProducts) Update(_ context.Context, p domain.Product) (domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.products[p.ID]
	if !ok || existing.EventID != p.EventID {
		return domain.Product{}, repository.ErrNotFound
	}
	if p.QuantityTotal != nil && *p.QuantityTotal < existing.QuantitySold {
		return domain.Product{}, repository.ErrQuantityBelowSold
	}
	p.QuantitySold = existing.QuantitySold
	r.db.products[p.ID] = p
	return p, nil
}

func (r memoryProducts) Delete(_ context.Context, eventID, productID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[productID]
	if !ok || p.EventID != eventID {
		return repository.ErrNotFound
	}
	delete(r.db.products, productID)
	return nil
}

func intPtr(v int) *int { return &v }
