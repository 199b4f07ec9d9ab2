package seed

import "github.com/iliyamo/bookit/internal/model"

// Experiences is the sample catalog.
var Experiences = []model.Experience{
	{
		ID:           "exp_kayaking_001",
		Title:        "Kayaking Adventure",
		Description:  "Experience the thrill of kayaking through crystal-clear waters. This curated small-group experience includes all safety gear, certified guides, and stunning views. Perfect for both beginners and experienced kayakers. Navigate through scenic waterways while learning proper techniques from our expert instructors.",
		Location:     "Goa, India",
		Price:        999,
		Duration:     "3 hours",
		Category:     "Adventure",
		Rating:       4.8,
		Reviews:      127,
		MaxGroupSize: 8,
		Images: []string{
			"https://images.unsplash.com/photo-1544551763-46a013bb70d5?w=800",
			"https://images.unsplash.com/photo-1503481766315-7a586b20f66d?w=800",
			"https://images.unsplash.com/photo-1582967788606-a171c1080cb0?w=800",
		},
		Highlights: []string{
			"Professional kayaking equipment provided",
			"Certified guide with 10+ years experience",
			"Safety briefing and basic training included",
			"Scenic waterway exploration",
			"Small group size for personalized attention",
		},
		Included: []string{
			"All kayaking equipment (kayak, paddle, life jacket)",
			"Safety gear and helmets",
			"Professional guide",
			"Waterproof bag for belongings",
			"Complimentary photos",
			"Refreshments and water",
		},
	},
	{
		ID:           "exp_sunrise_002",
		Title:        "Nandi Hills Sunrise Trek",
		Description:  "Wake up early and witness a breathtaking sunrise from Nandi Hills. This guided trek takes you through scenic trails to reach the summit just in time for dawn. Experience the magical transformation as the sky changes colors and the city below awakens. A perfect experience for nature lovers and photography enthusiasts.",
		Location:     "Nandi Hills, Bangalore",
		Price:        599,
		Duration:     "4 hours",
		Category:     "Nature",
		Rating:       4.9,
		Reviews:      243,
		MaxGroupSize: 15,
		Images: []string{
			"https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=800",
			"https://images.unsplash.com/photo-1464822759023-fed622ff2c3b?w=800",
			"https://images.unsplash.com/photo-1441974231531-c6227db76b6e?w=800",
		},
		Highlights: []string{
			"Watch a stunning sunrise from the hilltop",
			"Guided trek through beautiful trails",
			"Photography opportunities at multiple viewpoints",
			"Learn about local flora and fauna",
			"Hot tea and breakfast at the summit",
		},
		Included: []string{
			"Professional trekking guide",
			"Hot beverages (tea/coffee)",
			"Light breakfast",
			"First aid kit",
			"Trekking pole (if needed)",
		},
	},
	{
		ID:           "exp_coffee_003",
		Title:        "Coffee Plantation Trail",
		Description:  "Immerse yourself in the aromatic world of coffee. Walk through lush coffee plantations, learn about the cultivation process from bean to cup, and enjoy fresh brews. This guided tour offers insights into sustainable farming practices and includes hands-on coffee tasting sessions with expert sommeliers.",
		Location:     "Coorg, Karnataka",
		Price:        799,
		Duration:     "5 hours",
		Category:     "Food & Drink",
		Rating:       4.7,
		Reviews:      189,
		MaxGroupSize: 12,
		Images: []string{
			"https://images.unsplash.com/photo-1447933601403-0c6688de566e?w=800",
			"https://images.unsplash.com/photo-1559056199-641a0ac8b55e?w=800",
			"https://images.unsplash.com/photo-1442411210769-b95c455a1b3e?w=800",
		},
		Highlights: []string{
			"Walk through scenic coffee plantations",
			"Learn the complete coffee-making process",
			"Hands-on coffee picking experience",
			"Professional coffee tasting session",
			"Meet local farmers and learn sustainable practices",
		},
		Included: []string{
			"Guided plantation tour",
			"Coffee tasting session (5 varieties)",
			"Traditional Coorg lunch",
			"Fresh coffee beans sample pack",
			"Transportation within plantation",
		},
	},
	{
		ID:           "exp_yoga_004",
		Title:        "Beach Sunrise Yoga",
		Description:  "Start your day with peace and tranquility through a sunrise yoga session on the beach. Feel the sand beneath your feet, breathe in the fresh ocean air, and practice yoga as the sun rises over the horizon. Suitable for all levels, from complete beginners to advanced practitioners.",
		Location:     "Varkala, Kerala",
		Price:        499,
		Duration:     "2 hours",
		Category:     "Wellness",
		Rating:       4.9,
		Reviews:      312,
		MaxGroupSize: 20,
		Images: []string{
			"https://images.unsplash.com/photo-1506126613408-eca07ce68773?w=800",
			"https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?w=800",
			"https://images.unsplash.com/photo-1545389336-cf090694435e?w=800",
		},
		Highlights: []string{
			"Yoga session during magical sunrise hours",
			"Guided meditation by certified instructor",
			"Beach setting with ocean sounds",
			"All skill levels welcome",
			"Relaxation and breathing techniques",
		},
		Included: []string{
			"Yoga mat and props",
			"Certified yoga instructor",
			"Meditation session",
			"Herbal tea after class",
			"Beach towel",
		},
	},
	{
		ID:           "exp_cooking_005",
		Title:        "Traditional Cooking Class",
		Description:  "Learn to cook authentic Indian dishes from experienced local chefs. This hands-on cooking class covers traditional recipes passed down through generations. Prepare a complete meal from appetizers to desserts, and enjoy your creations with fellow food enthusiasts.",
		Location:     "Jaipur, Rajasthan",
		Price:        1299,
		Duration:     "4 hours",
		Category:     "Food & Drink",
		Rating:       4.8,
		Reviews:      156,
		MaxGroupSize: 10,
		Images: []string{
			"https://images.unsplash.com/photo-1556910103-1c02745aae4d?w=800",
			"https://images.unsplash.com/photo-1466637574441-749b8f19452f?w=800",
			"https://images.unsplash.com/photo-1504674900247-0877df9cc836?w=800",
		},
		Highlights: []string{
			"Learn 5 authentic Rajasthani dishes",
			"Hands-on cooking experience",
			"Professional chef instruction",
			"Visit local spice market",
			"Enjoy the meal you prepare",
		},
		Included: []string{
			"All cooking ingredients and equipment",
			"Recipe booklet to take home",
			"Spice kit with traditional blends",
			"Welcome drink and appetizers",
			"Chef apron and certificate",
		},
	},
	{
		ID:           "exp_heritage_006",
		Title:        "Heritage Walk & Street Food",
		Description:  "Explore the historic lanes of Old Delhi while sampling the best street food the city has to offer. This walking tour combines cultural heritage with culinary delights, taking you to hidden gems known only to locals. Experience the vibrant markets, ancient monuments, and mouth-watering flavors.",
		Location:     "Old Delhi, Delhi",
		Price:        699,
		Duration:     "3.5 hours",
		Category:     "Cultural",
		Rating:       4.7,
		Reviews:      278,
		MaxGroupSize: 12,
		Images: []string{
			"https://images.unsplash.com/photo-1524492412937-b28074a5d7da?w=800",
			"https://images.unsplash.com/photo-1555939594-58d7cb561ad1?w=800",
			"https://images.unsplash.com/photo-1601050690597-df0568f70950?w=800",
		},
		Highlights: []string{
			"Visit 8+ street food vendors",
			"Explore historic monuments and lanes",
			"Learn about Delhi's rich history",
			"Taste authentic local delicacies",
			"Small group for better interaction",
		},
		Included: []string{
			"Professional guide with historical expertise",
			"All food tastings (8-10 items)",
			"Bottled water",
			"Monument entry fees",
			"Digital photo album",
		},
	},
}

// PromoCodes are the sample discount codes.
var PromoCodes = []model.PromoCode{
	{Code: "SAVE10", Type: model.PromoPercentage, Value: 10, Active: true},
	{Code: "FLAT100", Type: model.PromoFlat, Value: 100, Active: true},
	{Code: "WELCOME20", Type: model.PromoPercentage, Value: 20, Active: true},
	{Code: "FIRSTBOOKING", Type: model.PromoFlat, Value: 150, Active: true},
	{Code: "EARLYBIRD", Type: model.PromoPercentage, Value: 15, Active: true},
}
