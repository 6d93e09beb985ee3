package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(db *sql.DB, logger *logging.LoggerV2) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger,
	}
}

func (r *PostgresStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// --- users ---

const userColumns = `id, name, email, type, pedidos, economizou, created_at`

// userSelect adds the favorites count to the stored columns.
const userSelect = `
	SELECT ` + userColumns + `,
		(SELECT COUNT(*) FROM favorites f WHERE f.user_id = users.id)
	FROM users
`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Type, &u.Pedidos, &u.Economizou, &u.CreatedAt, &u.Favoritos)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.logger.Debug("Fetching user by email", logging.Fields{"email": email})

	query := userSelect + ` WHERE lower(email) = lower($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil && !errors.IsNotFound(err) {
		r.logger.Error("Failed to fetch user", logging.Fields{"email": email, "error": err.Error()})
	}
	return u, err
}

func (r *PostgresStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := userSelect + ` WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.IsNotFound(err) {
		r.logger.Error("Failed to fetch user", logging.Fields{"user_id": id, "error": err.Error()})
	}
	return u, err
}

func (r *PostgresStore) CreateUser(ctx context.Context, name, email string, userType models.UserType) (*models.User, error) {
	r.logger.Debug("Creating user", logging.Fields{"email": email, "type": userType})

	query := `
		INSERT INTO users (name, email, type)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns + `, 0`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, name, email, userType))
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, errors.NewValidationError("email", "email already registered")
		}
		r.logger.Error("Failed to create user", logging.Fields{"email": email, "error": err.Error()})
		return nil, err
	}

	r.logger.Info("User created", logging.Fields{"user_id": u.ID, "type": u.Type})
	return u, nil
}

func (r *PostgresStore) FirstPharmacyID(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE type = $1 ORDER BY id LIMIT 1`,
		models.UserTypePharmacy,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, errors.ErrNotFound
	}
	return id, err
}

func (r *PostgresStore) RecordCheckout(ctx context.Context, userID int64, orders int, saved decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET pedidos = pedidos + $2, economizou = economizou + $3
		WHERE id = $1
	`, userID, orders, saved)
	if err != nil {
		r.logger.Error("Failed to record checkout", logging.Fields{"user_id": userID, "error": err.Error()})
		return err
	}
	return expectOneRow(res)
}

// --- products ---

const productSelect = `
	SELECT p.id, p.pharmacy_id, u.name, p.name, p.category, p.price, p.old_price,
	       COALESCE(p.image, ''), f.product_id IS NOT NULL
	FROM products p
	JOIN users u ON u.id = p.pharmacy_id
	LEFT JOIN favorites f ON f.product_id = p.id AND f.user_id = $1
`

func scanProducts(rows *sql.Rows) ([]*models.Product, error) {
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID,
			&p.PharmacyID,
			&p.PharmacyName,
			&p.Name,
			&p.Category,
			&p.Price,
			&p.OldPrice,
			&p.Image,
			&p.IsFavorite,
		); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

// escapeLike escapes LIKE metacharacters so the query matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SearchProducts matches name case-insensitively. Category and MaxPrice
// only narrow the result when set.
func (r *PostgresStore) SearchProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	r.logger.Debug("Searching products", logging.Fields{
		"query":     filter.Query,
		"category":  filter.Category,
		"max_price": filter.MaxPrice.String(),
	})

	args := []interface{}{filter.UserID, "%" + escapeLike(filter.Query) + "%"}
	query := productSelect + ` WHERE p.name ILIKE $2 ESCAPE '\'`

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND p.category = $%d", len(args))
	}
	if filter.MaxPrice.IsPositive() {
		args = append(args, filter.MaxPrice)
		query += fmt.Sprintf(" AND p.price <= $%d", len(args))
	}
	query += " ORDER BY p.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to search products", logging.Fields{"error": err.Error()})
		return nil, err
	}
	return scanProducts(rows)
}

func (r *PostgresStore) GetFeaturedProducts(ctx context.Context, limit int) ([]*models.Product, error) {
	query := productSelect + `
		WHERE p.old_price IS NOT NULL AND p.old_price > p.price
		ORDER BY (p.old_price - p.price) DESC, p.id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, 0, limit)
	if err != nil {
		r.logger.Error("Failed to fetch featured products", logging.Fields{"error": err.Error()})
		return nil, err
	}
	return scanProducts(rows)
}

func (r *PostgresStore) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, productSelect+` WHERE p.id = $2`, 0, id)
	if err != nil {
		return nil, err
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, errors.ErrNotFound
	}
	return products[0], nil
}

func (r *PostgresStore) GetPharmacyProducts(ctx context.Context, pharmacyID int64) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, productSelect+` WHERE p.pharmacy_id = $2 ORDER BY p.id`, 0, pharmacyID)
	if err != nil {
		r.logger.Error("Failed to fetch pharmacy products", logging.Fields{
			"pharmacy_id": pharmacyID,
			"error":       err.Error(),
		})
		return nil, err
	}
	return scanProducts(rows)
}

func (r *PostgresStore) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PostgresStore) AddProduct(ctx context.Context, pharmacyID int64, in *models.ProductInput) (*models.Product, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (pharmacy_id, name, category, price, old_price, image)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING id
	`, pharmacyID, in.Name, in.Category, in.Price, in.OldPrice, in.Image).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to add product", logging.Fields{
			"pharmacy_id": pharmacyID,
			"error":       err.Error(),
		})
		return nil, err
	}

	r.logger.Info("Product added", logging.Fields{"product_id": id, "pharmacy_id": pharmacyID})
	return r.GetProduct(ctx, id)
}

func (r *PostgresStore) UpdateProduct(ctx context.Context, id int64, in *models.ProductInput) (*models.Product, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, price = $4, old_price = $5, image = NULLIF($6, '')
		WHERE id = $1
	`, id, in.Name, in.Category, in.Price, in.OldPrice, in.Image)
	if err != nil {
		r.logger.Error("Failed to update product", logging.Fields{"product_id": id, "error": err.Error()})
		return nil, err
	}
	if err := expectOneRow(res); err != nil {
		return nil, err
	}
	return r.GetProduct(ctx, id)
}

func (r *PostgresStore) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete product", logging.Fields{"product_id": id, "error": err.Error()})
		return err
	}
	return expectOneRow(res)
}

// --- orders ---

const orderSelect = `
	SELECT o.id, o.user_id, c.name, o.pharmacy_id, ph.name, o.total, o.status, o.date
	FROM orders o
	JOIN users c ON c.id = o.user_id
	JOIN users ph ON ph.id = o.pharmacy_id
`

// CreateOrderGroup inserts the order and its items in one transaction.
func (r *PostgresStore) CreateOrderGroup(ctx context.Context, userID int64, group *models.OrderGroup) (*models.Order, error) {
	r.logger.Debug("Creating order", logging.Fields{
		"user_id":     userID,
		"pharmacy_id": group.PharmacyID,
		"items":       len(group.Items),
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order := &models.Order{
		UserID:     userID,
		PharmacyID: group.PharmacyID,
		Total:      group.Total,
		Status:     models.OrderStatusPreparando,
		Items:      make([]models.OrderItem, 0, len(group.Items)),
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, pharmacy_id, total, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date
	`, userID, group.PharmacyID, group.Total, order.Status).Scan(&order.ID, &order.Date)
	if err != nil {
		r.logger.Error("Failed to create order", logging.Fields{
			"user_id":     userID,
			"pharmacy_id": group.PharmacyID,
			"error":       err.Error(),
		})
		return nil, err
	}

	for _, line := range group.Items {
		item := models.OrderItem{
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, price, quantity)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, item.OrderID, item.ProductID, item.Name, item.Price, item.Quantity).Scan(&item.ID)
		if err != nil {
			r.logger.Error("Failed to create order item", logging.Fields{
				"order_id":   order.ID,
				"product_id": line.ProductID,
				"error":      err.Error(),
			})
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info("Order created successfully", logging.Fields{
		"order_id":    order.ID,
		"user_id":     userID,
		"pharmacy_id": group.PharmacyID,
		"total":       order.Total.String(),
	})
	return order, nil
}

func (r *PostgresStore) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	orders, err := r.listOrders(ctx, orderSelect+` WHERE o.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, errors.ErrNotFound
	}
	return orders[0], nil
}

func (r *PostgresStore) GetClientOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	return r.listOrders(ctx, orderSelect+` WHERE o.user_id = $1 ORDER BY o.date DESC, o.id DESC`, userID)
}

func (r *PostgresStore) GetPharmacyOrders(ctx context.Context, pharmacyID int64) ([]*models.Order, error) {
	return r.listOrders(ctx, orderSelect+` WHERE o.pharmacy_id = $1 ORDER BY o.date DESC, o.id DESC`, pharmacyID)
}

// listOrders runs an order query and batch-loads the items of every row.
func (r *PostgresStore) listOrders(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", logging.Fields{"error": err.Error()})
		return nil, err
	}

	orders := make([]*models.Order, 0)
	byID := make(map[int64]*models.Order)
	ids := make([]int64, 0)
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.ClientName, &o.PharmacyID, &o.PharmacyName, &o.Total, &o.Status, &o.Date); err != nil {
			rows.Close()
			return nil, err
		}
		o.Items = make([]models.OrderItem, 0)
		orders = append(orders, &o)
		byID[o.ID] = &o
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(ids) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		r.logger.Error("Failed to load order items", logging.Fields{"error": err.Error()})
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return orders, itemRows.Err()
}

// RemoveOrderItem deletes the item and decrements the order total by the
// stored line amount within one transaction.
func (r *PostgresStore) RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*models.OrderItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	item := models.OrderItem{ID: itemID, OrderID: orderID}
	err = tx.QueryRowContext(ctx, `
		DELETE FROM order_items
		WHERE id = $1 AND order_id = $2
		RETURNING product_id, name, price, quantity
	`, itemID, orderID).Scan(&item.ProductID, &item.Name, &item.Price, &item.Quantity)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to remove order item", logging.Fields{
			"order_id": orderID,
			"item_id":  itemID,
			"error":    err.Error(),
		})
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET total = total - $2 WHERE id = $1`,
		orderID, item.LineTotal(),
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info("Order item removed", logging.Fields{
		"order_id": orderID,
		"item_id":  itemID,
		"amount":   item.LineTotal().String(),
	})
	return &item, nil
}

func (r *PostgresStore) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	r.logger.Debug("Updating order status", logging.Fields{
		"order_id":   orderID,
		"new_status": status,
	})

	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		r.logger.Error("Failed to update order status", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
		return err
	}
	return expectOneRow(res)
}

// --- favorites ---

// ToggleFavorite removes the pair if present, otherwise inserts it.
func (r *PostgresStore) ToggleFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n > 0 {
		return false, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO favorites (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, productID); err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return false, errors.ErrNotFound
		}
		r.logger.Error("Failed to add favorite", logging.Fields{
			"user_id":    userID,
			"product_id": productID,
			"error":      err.Error(),
		})
		return false, err
	}
	return true, tx.Commit()
}

func (r *PostgresStore) GetFavorites(ctx context.Context, userID int64) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, productSelect+` WHERE f.user_id IS NOT NULL ORDER BY p.id`, userID)
	if err != nil {
		r.logger.Error("Failed to fetch favorites", logging.Fields{"user_id": userID, "error": err.Error()})
		return nil, err
	}
	return scanProducts(rows)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrNotFound
	}
	return nil
}
