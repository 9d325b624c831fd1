package domain

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// UserGroupKey selects how sales_by_user buckets sales.
type UserGroupKey string

const (
	GroupByUserID   UserGroupKey = "id"
	GroupByUserName UserGroupKey = "name"
)

func ParseUserGroupKey(value string) (UserGroupKey, error) {
	switch UserGroupKey(value) {
	case GroupByUserID, GroupByUserName:
		return UserGroupKey(value), nil
	case "":
		return GroupByUserID, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGroupKey, value)
}

type UserTotal struct {
	User   string          `json:"user"`
	UserID int             `json:"user_id,omitempty"`
	Total  decimal.Decimal `json:"total"`
}

type AggregationResult struct {
	TotalSales    decimal.Decimal            `json:"total_sales"`
	SalesByClient map[string]decimal.Decimal `json:"sales_by_client"`
	SalesByUser   []UserTotal                `json:"sales_by_user"`
}

// AggregateSales sums sales overall, per client and per user.
//
// When focusUserID is set only that user's sales feed sales_by_user, so the
// list holds one entry if the user has sales and none otherwise. Users are
// listed in order of first appearance.
func AggregateSales(sales []*Sale, focusUserID *int, key UserGroupKey) AggregationResult {
	result := AggregationResult{
		TotalSales:    decimal.Zero,
		SalesByClient: make(map[string]decimal.Decimal),
		SalesByUser:   []UserTotal{},
	}

	positions := make(map[string]int)
	for _, sale := range sales {
		if sale == nil {
			continue
		}

		result.TotalSales = result.TotalSales.Add(sale.TotalAmount)
		result.SalesByClient[sale.Client] = result.SalesByClient[sale.Client].Add(sale.TotalAmount)

		if focusUserID != nil && sale.UserID != *focusUserID {
			continue
		}

		group, total := userGroup(sale, key)
		if pos, ok := positions[group]; ok {
			result.SalesByUser[pos].Total = result.SalesByUser[pos].Total.Add(sale.TotalAmount)
			continue
		}

		total.Total = sale.TotalAmount
		positions[group] = len(result.SalesByUser)
		result.SalesByUser = append(result.SalesByUser, total)
	}

	return result
}

func userGroup(sale *Sale, key UserGroupKey) (string, UserTotal) {
	name := fmt.Sprintf("User %d", sale.UserID)
	if sale.User != nil && sale.User.Name != "" {
		name = sale.User.Name
	}

	if key == GroupByUserName {
		return "name:" + name, UserTotal{User: name}
	}

	return "id:" + strconv.Itoa(sale.UserID), UserTotal{
		User:   fmt.Sprintf("%d - %s", sale.UserID, name),
		UserID: sale.UserID,
	}
}
