// Package seed loads the sample data set used by the development backend.
package seed

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/server/services"
)

// Table is the sample content of one resource.
type Table struct {
	Resource string
	Rows     []map[string]any
}

// Sample lists the tables in dependency order: rows are only referenced
// after they exist.
func Sample() []Table {
	return []Table{
		{"agencies", []map[string]any{
			{"phoneNumber": "021-8800-1000", "city": "Tehran", "officeAddress": "Valiasr St. 120"},
			{"phoneNumber": "071-3230-2000", "city": "Shiraz", "officeAddress": "Zand Blvd. 14"},
			{"phoneNumber": "031-3220-3000", "city": "Isfahan", "officeAddress": "Chahar Bagh 7"},
		}},
		{"customers", []map[string]any{
			{"nationalId": "0012345678", "name": "Sara", "lastName": "Karimi", "agencyId": 1, "city": "Tehran",
				"homeAddress": "Pasdaran 3", "age": 34, "personalInformation": "", "phoneNumber": "09120000001"},
			{"nationalId": "0087654321", "name": "Reza", "lastName": "Ahmadi", "agencyId": 2, "city": "Shiraz",
				"homeAddress": "Eram 9", "age": 41, "personalInformation": "prefers email", "phoneNumber": "09170000002"},
		}},
		{"cars", []map[string]any{
			{"color": "white", "model": "Dena", "engineType": "petrol", "productYear": 2022},
			{"color": "black", "model": "Tara", "engineType": "petrol", "productYear": 2023},
			{"color": "silver", "model": "Shahin", "engineType": "hybrid", "productYear": nil},
		}},
		{"companies", []map[string]any{
			{"name": "Iran Khodro", "website": "ikco.ir", "centralOfficeAddress": "Karaj Road km 14"},
			{"name": "SAIPA", "website": "saipa.ir", "centralOfficeAddress": "Karaj Road km 15"},
		}},
		{"sellingplans", []map[string]any{
			{"capacity": 100, "registrationCondition": "first-time buyers", "companyId": 1,
				"registrationDeadline": "2025-03-20", "cancelationBenefit": "2%"},
			{"capacity": 50, "registrationCondition": "open", "companyId": 2,
				"registrationDeadline": "2025-06-01", "cancelationBenefit": "none"},
			{"capacity": 20, "registrationCondition": "employees", "companyId": 1,
				"registrationDeadline": "2025-09-01", "cancelationBenefit": "5%"},
		}},
		{"spotsales", []map[string]any{
			{"planId": 1, "spotPrice": 950000000},
		}},
		{"overbooksales", []map[string]any{
			{"planId": 2, "advancePayment": 300000000, "terminalPrice": 1100000000},
		}},
		{"installmentsales", []map[string]any{
			{"planId": 3, "interestRate": 18.5, "carPrice": 1200000000, "partnershipInterest": 4},
		}},
		{"loans", []map[string]any{
			{"planId": 3, "loansId": 1, "price": 100000000, "dueDate": "2025-10-01", "paymentPenalty": 0.5},
			{"planId": 3, "loansId": 2, "price": 100000000, "dueDate": "2025-11-01", "paymentPenalty": 0.5},
		}},
		{"contracts", []map[string]any{
			{"cancelationCondition": "before delivery", "deliveryCondition": "90 days",
				"carId": 1, "customerId": 1, "companyId": 1, "planId": 1},
		}},
		{"participates", []map[string]any{
			{"customerId": 1, "planId": 1},
			{"customerId": 2, "planId": 2},
		}},
		{"have", []map[string]any{
			{"planId": 1, "carId": 1},
			{"planId": 2, "carId": 2},
			{"planId": 3, "carId": 3},
		}},
	}
}

// Load creates every sample row through rs, skipping tables whose
// resource the catalog does not declare.
func Load(ctx context.Context, c *catalog.Catalog, rs *services.RecordService, tables []Table) error {
	for _, t := range tables {
		d, err := c.Get(t.Resource)
		if err != nil {
			continue
		}
		for _, row := range t.Rows {
			if _, err := rs.Create(ctx, d, row); err != nil {
				return fmt.Errorf("seed %s: %w", t.Resource, err)
			}
		}
	}
	return nil
}
