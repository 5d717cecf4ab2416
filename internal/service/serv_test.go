package service_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/linemk/tech-store/internal/config"
	"github.com/linemk/tech-store/internal/domain/models"
	"github.com/linemk/tech-store/internal/service"
	"github.com/linemk/tech-store/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[int64]*models.User
	next  int64
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	for i := int64(1); i <= f.next; i++ {
		if u, ok := f.users[i]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) ListByEmail(ctx context.Context, email string) ([]*models.User, error) {
	var users []*models.User
	for i := int64(1); i <= f.next; i++ {
		if u, ok := f.users[i]; ok && u.Email == email {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	f.next++
	user.ID = f.next
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, id int64, patch storage.UserPatch) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Active != nil {
		u.Active = *patch.Active
	}
	if patch.PassHash != nil {
		u.PassHash = patch.PassHash
	}
	return u, nil
}

func (f *fakeUserRepo) DeleteUser(ctx context.Context, id int64) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) CountUsers(ctx context.Context) (int, error) {
	return len(f.users), nil
}

type fakeProductRepo struct {
	products map[int64]*models.Product
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*models.Product)}
}

func (f *fakeProductRepo) List(ctx context.Context) ([]*models.Product, error) {
	var products []*models.Product
	for _, p := range f.products {
		products = append(products, p)
	}
	return products, nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, storage.ErrProductNotFound
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	product.ID = int64(len(f.products) + 1)
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, id int64, patch storage.ProductPatch) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	return p, nil
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	delete(f.products, id)
	return nil
}

type fakeOrderRepo struct {
	orders   map[int64]*models.Order
	failing  bool   // эмуляция недоступного хранилища
	onCreate func() // вызывается перед записью заказа
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*models.Order)}
}

func (f *fakeOrderRepo) List(ctx context.Context) ([]*models.Order, error) {
	var orders []*models.Order
	for _, o := range f.orders {
		orders = append(orders, o)
	}
	return orders, nil
}

func (f *fakeOrderRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	var orders []*models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, storage.ErrOrderNotFound
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.failing {
		return nil, errors.New("storage unavailable")
	}
	order.ID = int64(len(f.orders) + 1)
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeOrderRepo) UpdateOrder(ctx context.Context, id int64, patch storage.OrderPatch) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	return o, nil
}

func (f *fakeOrderRepo) DeleteOrder(ctx context.Context, id int64) error {
	delete(f.orders, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func testSeed() config.SeedConfig {
	return config.SeedConfig{AdminEmail: "admin@tech.com", AdminName: "Admin", AdminPassword: "admin123"}
}

func TestAuthService_Login_Success(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(testLogger(), fakeRepo, 60*time.Minute, testSeed())
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	_, err = fakeRepo.CreateUser(ctx, &models.User{
		Name:     "Admin",
		Email:    "admin@tech.com",
		Role:     models.RoleAdmin,
		Active:   true,
		PassHash: hashed,
	})
	assert.NoError(t, err)

	token, err := authSvc.Login(ctx, "admin@tech.com", "admin123")
	assert.NoError(t, err, "Login should succeed with correct password")
	assert.NotEmpty(t, token, "Token should be returned")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(testLogger(), fakeRepo, 60*time.Minute, testSeed())
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	_, err = fakeRepo.CreateUser(ctx, &models.User{
		Email:    "admin@tech.com",
		Role:     models.RoleAdmin,
		Active:   true,
		PassHash: hashed,
	})
	assert.NoError(t, err)

	token, err := authSvc.Login(ctx, "admin@tech.com", "wrongpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials, "Login should fail with incorrect password")
	assert.Empty(t, token)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(testLogger(), fakeRepo, 60*time.Minute, testSeed())
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	_, err = fakeRepo.CreateUser(ctx, &models.User{
		Email:    "blocked@tech.com",
		Role:     models.RoleUser,
		Active:   false,
		PassHash: hashed,
	})
	assert.NoError(t, err)

	_, err = authSvc.Login(ctx, "blocked@tech.com", "secret")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials, "Inactive user should not be able to log in")
}

func TestAuthService_CheckCredentials_DuplicateEmail(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(testLogger(), fakeRepo, 60*time.Minute, testSeed())
	ctx := context.Background()

	// email не уникален: отбор должен идти по паре email+пароль
	firstHash, err := bcrypt.GenerateFromPassword([]byte("first-pass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	secondHash, err := bcrypt.GenerateFromPassword([]byte("second-pass"), bcrypt.DefaultCost)
	require.NoError(t, err)

	first, err := fakeRepo.CreateUser(ctx, &models.User{
		Name: "First", Email: "dup@tech.com", Role: models.RoleUser, Active: true, PassHash: firstHash,
	})
	require.NoError(t, err)
	second, err := fakeRepo.CreateUser(ctx, &models.User{
		Name: "Second", Email: "dup@tech.com", Role: models.RoleUser, Active: true, PassHash: secondHash,
	})
	require.NoError(t, err)

	got, err := authSvc.CheckCredentials(ctx, "dup@tech.com", "second-pass")
	assert.NoError(t, err, "Second user's password should authenticate despite the shared email")
	assert.Equal(t, second.ID, got.ID)

	got, err = authSvc.CheckCredentials(ctx, "dup@tech.com", "first-pass")
	assert.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = authSvc.CheckCredentials(ctx, "dup@tech.com", "neither-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	token, err := authSvc.Login(ctx, "dup@tech.com", "second-pass")
	assert.NoError(t, err, "Login goes through the same pair check")
	assert.NotEmpty(t, token)
}

func TestAuthService_EnsureSeedAdmin(t *testing.T) {
	fakeRepo := newFakeUserRepo()
	authSvc := service.NewAuthService(testLogger(), fakeRepo, 60*time.Minute, testSeed())
	ctx := context.Background()

	err := authSvc.EnsureSeedAdmin(ctx)
	assert.NoError(t, err)

	admins, err := fakeRepo.ListByEmail(ctx, "admin@tech.com")
	assert.NoError(t, err)
	require.Len(t, admins, 1, "Seed admin should exist")
	admin := admins[0]
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.Active)
	// пароль хранится только в виде bcrypt-хэша
	assert.NoError(t, bcrypt.CompareHashAndPassword(admin.PassHash, []byte("admin123")))

	// повторный вызов не плодит администраторов
	err = authSvc.EnsureSeedAdmin(ctx)
	assert.NoError(t, err)
	count, _ := fakeRepo.CountUsers(ctx)
	assert.Equal(t, 1, count)
}

func TestUserService_Create_HashesPassword(t *testing.T) {
	fakeRepo := newFakeUserRepo()
	userSvc := service.NewUserService(testLogger(), fakeRepo)
	ctx := context.Background()

	user, err := userSvc.Create(ctx, service.NewUser{
		Name:     "Maria",
		Email:    "maria@tech.com",
		Active:   true,
		Password: "password123",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role, "Empty role should default to user")
	assert.NotEqual(t, []byte("password123"), user.PassHash, "Password should be hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword(user.PassHash, []byte("password123")))
}

func TestCartService_Add_AccumulatesQuantity(t *testing.T) {
	products := newFakeProductRepo()
	carts := storage.NewCartStorage()
	cartSvc := service.NewCartService(testLogger(), carts, products)
	ctx := context.Background()

	_, err := products.CreateProduct(ctx, &models.Product{Name: "iPad", Brand: "Apple", Category: models.CategoryTablet, Price: 500, Active: true})
	assert.NoError(t, err)

	_, err = cartSvc.Add(ctx, 1, 1, 2)
	assert.NoError(t, err)
	cart, err := cartSvc.Add(ctx, 1, 1, 3)
	assert.NoError(t, err)

	assert.Len(t, cart.Items, 1, "Repeated additions of the same product must keep one line")
	assert.Equal(t, 5, cart.Items[0].Quantity, "Quantity should equal the sum of additions")
	assert.Equal(t, 2500.0, cart.Total)
}

func TestCartService_Add_InvalidQuantity(t *testing.T) {
	products := newFakeProductRepo()
	carts := storage.NewCartStorage()
	cartSvc := service.NewCartService(testLogger(), carts, products)
	ctx := context.Background()

	_, err := products.CreateProduct(ctx, &models.Product{Name: "iPad", Category: models.CategoryTablet, Price: 500, Active: true})
	assert.NoError(t, err)

	_, err = cartSvc.Add(ctx, 1, 1, 0)
	assert.ErrorIs(t, err, service.ErrInvalidQuantity)
	_, err = cartSvc.Add(ctx, 1, 1, -2)
	assert.ErrorIs(t, err, service.ErrInvalidQuantity)

	cart, err := cartSvc.Get(ctx, 1)
	assert.NoError(t, err)
	assert.Empty(t, cart.Items, "Rejected additions must not change the cart")
}

func TestCartService_Add_UnavailableProduct(t *testing.T) {
	products := newFakeProductRepo()
	carts := storage.NewCartStorage()
	cartSvc := service.NewCartService(testLogger(), carts, products)
	ctx := context.Background()

	_, err := products.CreateProduct(ctx, &models.Product{Name: "Old phone", Category: models.CategorySmartphone, Price: 100, Active: false})
	assert.NoError(t, err)

	_, err = cartSvc.Add(ctx, 1, 1, 1)
	assert.ErrorIs(t, err, service.ErrProductUnavailable, "Inactive product should be rejected")
	_, err = cartSvc.Add(ctx, 1, 99, 1)
	assert.ErrorIs(t, err, service.ErrProductUnavailable, "Missing product should be rejected")
}

func TestCartService_SetQuantity_ZeroRemovesLine(t *testing.T) {
	products := newFakeProductRepo()
	carts := storage.NewCartStorage()
	cartSvc := service.NewCartService(testLogger(), carts, products)
	ctx := context.Background()

	_, err := products.CreateProduct(ctx, &models.Product{Name: "iPad", Category: models.CategoryTablet, Price: 500, Active: true})
	assert.NoError(t, err)

	_, err = cartSvc.Add(ctx, 1, 1, 2)
	assert.NoError(t, err)

	cart, err := cartSvc.SetQuantity(ctx, 1, 1, 0)
	assert.NoError(t, err)
	assert.Empty(t, cart.Items, "Zero quantity should remove the line")
	assert.Equal(t, 0.0, cart.Total)
}

func TestOrderService_Checkout_Success(t *testing.T) {
	orders := newFakeOrderRepo()
	carts := storage.NewCartStorage()
	orderSvc := service.NewOrderService(testLogger(), orders, carts)
	ctx := context.Background()
	userID := int64(7)

	carts.Add(userID, 1, 2)
	carts.Add(userID, 3, 1)

	order, err := orderSvc.Checkout(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, userID, order.UserID)
	assert.Equal(t, models.StatusPending, order.Status, "Status must be fixed to pending")
	assert.Equal(t, time.Now().Format("2006-01-02"), order.Date)
	assert.Equal(t, []models.OrderLine{{ProductID: 1, Quantity: 2}, {ProductID: 3, Quantity: 1}}, order.Lines)
	assert.Empty(t, carts.Items(userID), "Cart must be cleared after a successful checkout")
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	orders := newFakeOrderRepo()
	carts := storage.NewCartStorage()
	orderSvc := service.NewOrderService(testLogger(), orders, carts)
	ctx := context.Background()

	order, err := orderSvc.Checkout(ctx, 7)
	assert.ErrorIs(t, err, service.ErrEmptyCart)
	assert.Nil(t, order)
	assert.Empty(t, orders.orders, "Empty cart checkout must not touch the store")
}

func TestOrderService_Checkout_KeepsLinesAddedDuringCheckout(t *testing.T) {
	orders := newFakeOrderRepo()
	carts := storage.NewCartStorage()
	orderSvc := service.NewOrderService(testLogger(), orders, carts)
	ctx := context.Background()
	userID := int64(7)

	carts.Add(userID, 1, 2)
	// строка появляется между снимком корзины и записью заказа
	orders.onCreate = func() {
		carts.Add(userID, 3, 1)
	}

	order, err := orderSvc.Checkout(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, []models.OrderLine{{ProductID: 1, Quantity: 2}}, order.Lines)
	assert.Equal(t, []models.CartItem{{ProductID: 3, Quantity: 1}}, carts.Items(userID),
		"A line added during checkout must survive the cleanup")
}

func TestOrderService_Checkout_StoreFailureKeepsCart(t *testing.T) {
	orders := newFakeOrderRepo()
	orders.failing = true
	carts := storage.NewCartStorage()
	orderSvc := service.NewOrderService(testLogger(), orders, carts)
	ctx := context.Background()
	userID := int64(7)

	carts.Add(userID, 1, 2)

	order, err := orderSvc.Checkout(ctx, userID)
	assert.Error(t, err)
	assert.Nil(t, order)
	assert.Len(t, carts.Items(userID), 1, "Cart must stay intact when the store rejects the order")
}

func TestOrderService_Update_InvalidStatus(t *testing.T) {
	orders := newFakeOrderRepo()
	carts := storage.NewCartStorage()
	orderSvc := service.NewOrderService(testLogger(), orders, carts)
	ctx := context.Background()

	created, err := orderSvc.Create(ctx, 7, []models.OrderLine{{ProductID: 1, Quantity: 1}})
	assert.NoError(t, err)

	bogus := "on-the-moon"
	_, err = orderSvc.Update(ctx, created.ID, service.OrderUpdate{Status: &bogus})
	assert.ErrorIs(t, err, service.ErrInvalidStatus)
	assert.Equal(t, models.StatusPending, orders.orders[created.ID].Status, "Rejected update must not alter the order")
}

func TestOrderService_Update_ValidStatusTransition(t *testing.T) {
	orders := newFakeOrderRepo()
	carts := storage.NewCartStorage()
	orderSvc := service.NewOrderService(testLogger(), orders, carts)
	ctx := context.Background()

	created, err := orderSvc.Create(ctx, 7, []models.OrderLine{{ProductID: 1, Quantity: 1}})
	assert.NoError(t, err)

	shipped := models.StatusShipped
	updated, err := orderSvc.Update(ctx, created.ID, service.OrderUpdate{Status: &shipped})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusShipped, updated.Status)
}
