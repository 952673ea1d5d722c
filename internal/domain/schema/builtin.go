package schema

// DefaultPlatformID is the fallback template used when detection fails
// or an unknown platform id is requested.
const DefaultPlatformID = "custom"

// defaultCoreFields returns the platform-independent required fields
// with their English synonyms and detection patterns. Each call returns
// fresh copies so per-platform templates can append synonyms without
// sharing slices.
func defaultCoreFields() []FieldDefinition {
	return []FieldDefinition{
		{
			Name:     "order_id",
			Required: true,
			Type:     TypeString,
			Synonyms: []string{
				"order_id", "order id", "order number", "order no", "order ref",
				"invoice number", "reference", "transaction id",
			},
			Patterns: []Pattern{
				NewPattern(`order_?(id|number|no|ref)`, 0.9),
				NewPattern(`^(id|reference)$`, 0.7),
			},
			Validators: []string{"non_empty", "unique"},
			Samples:    []string{"ORD-1001", "#1002"},
		},
		{
			Name:     "order_date",
			Required: true,
			Type:     TypeDatetime,
			Synonyms: []string{
				"order_date", "order date", "date", "created at", "purchase date",
				"transaction date", "order time",
			},
			Patterns: []Pattern{
				NewPattern(`order_?(date|time)`, 0.9),
				NewPattern(`(date|created|time)`, 0.7),
			},
			Validators: []string{"reasonable_date"},
			Samples:    []string{"2024-03-15", "15/03/2024"},
		},
		{
			Name:     "customer_id",
			Required: true,
			Type:     TypeString,
			Synonyms: []string{
				"customer_id", "customer id", "customer", "user_id", "user id",
				"client id", "buyer id", "customer code",
			},
			Patterns: []Pattern{
				NewPattern(`(customer|client|buyer|user)_?(id|code|no)`, 0.9),
				NewPattern(`(customer|client|buyer)`, 0.7),
			},
			Validators: []string{"non_empty"},
			Samples:    []string{"CUST-001"},
		},
		{
			Name:     "order_total",
			Required: true,
			Type:     TypeFloat,
			Synonyms: []string{
				"order_total", "order total", "total", "total amount", "amount",
				"grand total", "order value",
			},
			Patterns: []Pattern{
				NewPattern(`order_?total`, 0.9),
				NewPattern(`(total|amount)`, 0.7),
			},
			Validators: []string{"non_negative"},
			Samples:    []string{"150.50"},
		},
	}
}

// defaultOptionalFields returns the platform-independent optional
// fields.
func defaultOptionalFields() []FieldDefinition {
	return []FieldDefinition{
		{
			Name: "order_status", Type: TypeString,
			Synonyms: []string{"order_status", "order status", "status", "state"},
			Patterns: []Pattern{NewPattern(`status`, 0.7)},
		},
		{
			Name: "currency", Type: TypeString,
			Synonyms:   []string{"currency", "currency code"},
			Validators: []string{"valid_currency"},
		},
		{
			Name: "customer_name", Type: TypeString,
			Synonyms: []string{"customer_name", "customer name", "client name", "buyer name", "full name"},
			Patterns: []Pattern{NewPattern(`(customer|client|buyer)_?name`, 0.9)},
		},
		{
			Name: "customer_email", Type: TypeString,
			Synonyms: []string{"customer_email", "customer email", "email", "e-mail", "email address"},
			Patterns: []Pattern{NewPattern(`e?_?mail`, 0.8)},
		},
		{
			Name: "customer_phone", Type: TypeString,
			Synonyms: []string{"customer_phone", "customer phone", "phone", "mobile", "phone number"},
			Patterns: []Pattern{NewPattern(`(phone|mobile)`, 0.8)},
		},
		{
			Name: "line_item_id", Type: TypeString,
			Synonyms: []string{"line_item_id", "line item id", "order_item_id", "order item id", "item line"},
			Patterns: []Pattern{NewPattern(`(line|order)_?item_?(id)?`, 0.9)},
		},
		{
			Name: "product_id", Type: TypeString,
			Synonyms: []string{"product_id", "product id", "item_id", "item id", "product code"},
			Patterns: []Pattern{NewPattern(`(product|item)_?(id|code)`, 0.9)},
		},
		{
			Name: "product_name", Type: TypeString,
			Synonyms: []string{"product_name", "product name", "item name", "product title", "product"},
			Patterns: []Pattern{NewPattern(`(product|item)_?(name|title)`, 0.9)},
		},
		{
			Name: "sku", Type: TypeString,
			Synonyms: []string{"sku", "product sku", "stock keeping unit", "barcode"},
		},
		{
			Name: "quantity", Type: TypeFloat,
			Synonyms:   []string{"quantity", "qty", "item quantity", "units", "count"},
			Patterns:   []Pattern{NewPattern(`(qty|quantity|count)`, 0.8)},
			Validators: []string{"positive"},
		},
		{
			Name: "item_total", Type: TypeFloat,
			Synonyms:   []string{"item_total", "item total", "item_price", "item price", "line total", "unit price", "price"},
			Patterns:   []Pattern{NewPattern(`item_?(total|price)`, 0.9)},
			Validators: []string{"non_negative"},
		},
		{
			Name: "discounts", Type: TypeFloat,
			Synonyms: []string{"discounts", "discount", "discount amount", "coupon amount"},
			Patterns: []Pattern{NewPattern(`discount`, 0.8)},
		},
		{
			Name: "shipping", Type: TypeFloat,
			Synonyms: []string{"shipping", "shipping cost", "shipping fee", "delivery cost"},
			Patterns: []Pattern{NewPattern(`shipping`, 0.8)},
		},
		{
			Name: "taxes", Type: TypeFloat,
			Synonyms: []string{"taxes", "tax", "tax amount", "vat"},
			Patterns: []Pattern{NewPattern(`(tax|vat)`, 0.8)},
		},
		{
			Name: "refund_amount", Type: TypeFloat,
			Synonyms: []string{"refund_amount", "refund amount", "refunded", "refund"},
			Patterns: []Pattern{NewPattern(`refund`, 0.8)},
		},
		{
			Name: "payment_status", Type: TypeString,
			Synonyms: []string{"payment_status", "payment status", "financial status", "paid"},
		},
		{
			Name: "payment_method", Type: TypeString,
			Synonyms: []string{"payment_method", "payment method", "payment type", "gateway"},
		},
		{
			Name: "fulfillment_status", Type: TypeString,
			Synonyms: []string{"fulfillment_status", "fulfillment status", "shipping status", "delivery status"},
		},
		{
			Name: "country", Type: TypeString,
			Synonyms: []string{"country", "shipping country", "billing country"},
		},
		{
			Name: "city", Type: TypeString,
			Synonyms: []string{"city", "shipping city", "billing city", "town"},
		},
	}
}

// withSynonyms prepends platform-specific synonyms to a definition,
// keeping the shared defaults as lower-priority alternatives.
func withSynonyms(def FieldDefinition, synonyms ...string) FieldDefinition {
	out := def.clone()
	out.Synonyms = append(append([]string(nil), synonyms...), out.Synonyms...)
	return out
}

// overrideFields applies per-platform synonym overrides onto a copy of
// the default definitions, keyed by canonical name.
func overrideFields(defaults []FieldDefinition, overrides map[string][]string) []FieldDefinition {
	out := make([]FieldDefinition, len(defaults))
	for i, def := range defaults {
		if extra, ok := overrides[def.Name]; ok {
			out[i] = withSynonyms(def, extra...)
		} else {
			out[i] = def.clone()
		}
	}
	return out
}

// BuiltinTemplates returns the shipped platform templates in
// declaration order. Declaration order is the deterministic tie-break
// for platform detection.
func BuiltinTemplates() []*PlatformTemplate {
	salla := &PlatformTemplate{
		ID:             "salla",
		DisplayName:    "Salla",
		Language:       "ar",
		Currency:       "SAR",
		DateFormatHint: "2006-01-02",
		CoreFields: overrideFields(defaultCoreFields(), map[string][]string{
			"order_id":    {"رقم الطلب", "معرف الطلب"},
			"order_date":  {"تاريخ الطلب", "تاريخ الإنشاء"},
			"customer_id": {"اسم العميل", "رقم العميل", "معرف العميل"},
			"order_total": {"إجمالي الطلب", "الإجمالي", "المجموع"},
		}),
		OptionalFields: overrideFields(defaultOptionalFields(), map[string][]string{
			"order_status":   {"حالة الطلب"},
			"currency":       {"العملة"},
			"customer_email": {"البريد الإلكتروني"},
			"customer_phone": {"رقم الجوال", "الهاتف"},
			"product_name":   {"اسم المنتج"},
			"quantity":       {"الكمية"},
			"discounts":      {"الخصم"},
			"shipping":       {"الشحن"},
			"taxes":          {"الضريبة"},
			"payment_method": {"طريقة الدفع"},
			"payment_status": {"حالة الدفع"},
			"country":        {"الدولة"},
			"city":           {"المدينة"},
		}),
	}

	shopify := &PlatformTemplate{
		ID:             "shopify",
		DisplayName:    "Shopify",
		Language:       "en",
		Currency:       "USD",
		DateFormatHint: "2006-01-02 15:04:05",
		CoreFields: overrideFields(defaultCoreFields(), map[string][]string{
			"order_id":    {"name"},
			"order_date":  {"created at", "paid at", "processed at"},
			"customer_id": {"email", "customer"},
			"order_total": {"total", "subtotal"},
		}),
		OptionalFields: overrideFields(defaultOptionalFields(), map[string][]string{
			"order_status":       {"financial status"},
			"fulfillment_status": {"fulfillment status"},
			"item_total":         {"lineitem price"},
			"quantity":           {"lineitem quantity"},
			"sku":                {"lineitem sku"},
			"product_name":       {"lineitem name"},
			"discounts":          {"discount amount"},
			"taxes":              {"taxes"},
			"country":            {"shipping country", "billing country"},
			"city":               {"shipping city", "billing city"},
		}),
	}

	woocommerce := &PlatformTemplate{
		ID:             "woocommerce",
		DisplayName:    "WooCommerce",
		Language:       "en",
		Currency:       "USD",
		DateFormatHint: "2006-01-02",
		CoreFields: overrideFields(defaultCoreFields(), map[string][]string{
			"order_id":    {"order id", "order number"},
			"order_date":  {"order date", "date created"},
			"customer_id": {"customer id", "customer user", "billing email"},
			"order_total": {"order total", "total amount"},
		}),
		OptionalFields: overrideFields(defaultOptionalFields(), map[string][]string{
			"order_status":   {"order status"},
			"customer_email": {"billing email address", "customer email"},
			"product_name":   {"item name"},
			"quantity":       {"item quantity"},
			"item_total":     {"item cost"},
			"country":        {"billing country"},
			"city":           {"billing city"},
		}),
	}

	custom := &PlatformTemplate{
		ID:             DefaultPlatformID,
		DisplayName:    "Custom / Unknown",
		Language:       "en",
		Currency:       "",
		CoreFields:     defaultCoreFields(),
		OptionalFields: defaultOptionalFields(),
	}

	return []*PlatformTemplate{salla, shopify, woocommerce, custom}
}
