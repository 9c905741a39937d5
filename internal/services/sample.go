package services

// Built-in demo dataset: one restaurant with its menu and sections, usable
// without any upload. menu_sections deliberately carries a
// foreign-key-shaped restaurant_id so the demo exercises the no-foreign-key
// mapping rule.
const (
	SampleSourceName  = "restaurant_demo"
	SampleSessionName = "Restaurant Demo Import"
)

const sampleDatasetJSON = `{
  "restaurants": [
    {
      "id": 1,
      "organization_id": "org-chef-lebanon",
      "name": "Chef Lebanon",
      "phone": "+1 415 555 0188",
      "email": "hello@cheflebanon.example",
      "street": "88 Cedar Street",
      "city": "San Francisco",
      "postal_code": "94102",
      "rating": 4.1,
      "delivery": true,
      "active": true,
      "created_at": "2019-03-12",
      "settings": {"ordering": "online", "pickup": true}
    }
  ],
  "menu_sections": [
    {"id": 1, "restaurant_id": 1, "name": "Mezza", "display_order": 1},
    {"id": 2, "restaurant_id": 1, "name": "Grill", "display_order": 2},
    {"id": 3, "restaurant_id": 1, "name": "Desserts", "display_order": 3}
  ],
  "menu_items": [
    {
      "id": 101,
      "section_id": 1,
      "name": "Hummus Beiruti",
      "description": "Chickpea dip with tahini, lemon and garlic",
      "ingredients": "chickpeas, tahini, lemon, garlic, olive oil",
      "price": 8.5,
      "available": true,
      "preparation_time": 10
    },
    {
      "id": 102,
      "section_id": 1,
      "name": "Tabbouleh",
      "description": "Parsley salad with bulgur, tomato and mint",
      "ingredients": "parsley, bulgur, tomato, mint, lemon",
      "price": 9.0,
      "available": true,
      "preparation_time": 12
    },
    {
      "id": 103,
      "section_id": 2,
      "name": "Shish Taouk",
      "description": "Charcoal-grilled chicken skewers with garlic sauce",
      "ingredients": "chicken, garlic, lemon, yogurt",
      "price": 16.0,
      "available": true,
      "preparation_time": 20
    },
    {
      "id": 104,
      "section_id": 2,
      "name": "Lamb Kafta",
      "description": "Minced lamb skewers with parsley and onion",
      "ingredients": "lamb, parsley, onion, spices",
      "price": 17.5,
      "available": false,
      "preparation_time": 18
    },
    {
      "id": 105,
      "section_id": 3,
      "name": "Knafeh",
      "description": "Warm cheese pastry with orange-blossom syrup",
      "ingredients": "akkawi cheese, semolina, syrup, pistachio",
      "price": 7.0,
      "available": true,
      "preparation_time": 15
    }
  ]
}`

// SampleDataset returns the raw demo payload exactly as an upload would
// arrive, so it flows through the same analyzer path as user data.
func SampleDataset() []byte {
	return []byte(sampleDatasetJSON)
}
