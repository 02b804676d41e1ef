// pkg/schema/default.go
package schema

import "github.com/AbinashParida-NITW/schema-mapper/pkg/model"

// Default returns the built-in retail-order schema used when no schema
// definition file is configured.
func Default() *Schema {
	s, err := New(defaultFields)
	if err != nil {
		// The built-in list is fixed; a failure here is a programming error.
		panic(err)
	}
	return s
}

var defaultFields = []Field{
	{Name: "order_id", Type: model.TypeIdentifier, Description: "Unique order identifier",
		Synonyms: []string{"order id", "order no", "ordernumber", "reference", "order_ref"}},
	{Name: "order_date", Type: model.TypeDate, Description: "ISO date of order",
		Synonyms: []string{"order date", "orderdate", "invoice date", "bill date", "ordered_on", "date"}},
	{Name: "customer_id", Type: model.TypeIdentifier, Description: "Internal customer id",
		Synonyms: []string{"customer id", "cust id", "client_ref"}},
	{Name: "customer_name", Type: model.TypeText, Description: "Full name",
		Synonyms: []string{"customer name", "customer", "client_name", "cust_name"}},
	{Name: "email", Type: model.TypeText, Description: "Contact email",
		Synonyms: []string{"email", "e-mail", "email_addr"}},
	{Name: "phone", Type: model.TypeIdentifier, Description: "Contact phone",
		Synonyms: []string{"phone", "phone #", "mobile", "phone_no", "contact_no"}},
	{Name: "billing_address", Type: model.TypeText, Description: "Billing address line",
		Synonyms: []string{"billing address", "bill addr", "bill_to", "billing_addr"}},
	{Name: "shipping_address", Type: model.TypeText, Description: "Shipping address line",
		Synonyms: []string{"shipping address", "ship addr", "ship_to", "shipping_addr"}},
	{Name: "city", Type: model.TypeText, Description: "City",
		Synonyms: []string{"city", "town"}},
	{Name: "state", Type: model.TypeText, Description: "State/Province",
		Synonyms: []string{"state", "state/province", "province"}},
	{Name: "postal_code", Type: model.TypeText, Description: "Zip/Postal/pin",
		Synonyms: []string{"postal code", "zip", "zip/postal", "zipcode", "pin", "postal"}},
	{Name: "country", Type: model.TypeText, Description: "Country",
		Synonyms: []string{"country", "country/region", "region"}},
	{Name: "product_sku", Type: model.TypeIdentifier, Description: "SKU code",
		Synonyms: []string{"sku", "product sku", "stock_code", "sku_code"}},
	{Name: "product_name", Type: model.TypeText, Description: "Item name",
		Synonyms: []string{"product name", "item", "desc", "description", "product"}},
	{Name: "category", Type: model.TypeText, Description: "Category",
		Synonyms: []string{"category", "cat.", "category_name"}},
	{Name: "subcategory", Type: model.TypeText, Description: "Subcategory if any",
		Synonyms: []string{"subcategory", "subcat", "sub_category", "sub_cat"}},
	{Name: "quantity", Type: model.TypeNumeric, Description: "Units ordered",
		Synonyms: []string{"quantity", "qty"}},
	{Name: "unit_price", Type: model.TypeNumeric, Description: "Price per unit",
		Synonyms: []string{"unit price", "price per unit", "price", "unit_cost"}},
	{Name: "currency", Type: model.TypeText, Description: "Currency code",
		Synonyms: []string{"currency", "curr"}},
	{Name: "discount_pct", Type: model.TypeNumeric, Description: "Discount fraction (0-1)",
		Synonyms: []string{"discount pct", "disc%", "discount", "disc_pct"}},
	{Name: "tax_pct", Type: model.TypeNumeric, Description: "Tax fraction (0-1)",
		Synonyms: []string{"tax pct", "tax%", "gst", "tax_rate"}},
	{Name: "shipping_fee", Type: model.TypeNumeric, Description: "Shipping amount",
		Synonyms: []string{"shipping fee", "ship fee", "logistics_fee", "shipping"}},
	{Name: "total_amount", Type: model.TypeNumeric, Description: "Total amount charged",
		Synonyms: []string{"total amount", "total", "grand_total", "amount"}},
	{Name: "tax_id", Type: model.TypeIdentifier, Description: "Tax/GST/VAT identifier",
		Synonyms: []string{"tax id", "tax number", "vat#", "vat number", "gstin", "pan", "reg no", "registration number"}},
}
