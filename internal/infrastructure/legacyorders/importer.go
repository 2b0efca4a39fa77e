package legacyorders

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bonjour-pay/invoice-service/internal/domain"
	_ "github.com/lib/pq"
)

// Объединённый запрос: услуги + строки заказа, без истории и контрагента,
// чтобы не было дублей.
const orderItemsQuery = `
	SELECT
		t1.name,
		s.kredit
	FROM docs_order o1
		INNER JOIN doc_order_services s
			ON o1.id = s.doc_order_id
		INNER JOIN tovars_tbl t1
			ON s.tovar_id = t1.tovar_id
		INNER JOIN docs d1
			ON o1.doc_id = d1.doc_id
	WHERE d1.doc_num = $1

	UNION ALL

	SELECT
		t2.name,
		l.kredit
	FROM doc_order_lines l
		INNER JOIN docs_order o2
			ON l.doc_order_id = o2.id
		INNER JOIN docs d2
			ON o2.doc_id = d2.doc_id
		INNER JOIN tovars_tbl t2
			ON l.tovar_id = t2.tovar_id
	WHERE d2.doc_num = $1`

// PGOrderImporter — тонкая обёртка над легаси-базой заказов мерчанта.
// Соединение открывается на каждый вызов и сразу закрывается.
type PGOrderImporter struct {
	dsn string
}

func NewPGOrderImporter(dsn string) *PGOrderImporter {
	return &PGOrderImporter{dsn: dsn}
}

func (i *PGOrderImporter) FetchOrderItems(ctx context.Context, orderNumber string) ([]domain.OrderItem, error) {
	if i.dsn == "" {
		return nil, &domain.ConfigurationError{Missing: "legacy_db.dsn"}
	}

	db, err := sql.Open("postgres", i.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy db: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, orderItemsQuery, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy db: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var name string
		var price float64
		if err := rows.Scan(&name, &price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if len(name) > 128 {
			name = name[:128]
		}
		items = append(items, domain.OrderItem{Name: name, Price: price})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}

	return items, nil
}
