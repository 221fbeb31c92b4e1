package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomUnitValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"room_type_id",
			"unit_no",
			"bookings",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"room_type_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"unit_no": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"bookings": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"range", "reservation_id"},
					"properties": bson.M{
						"range": bson.M{
							"bsonType": "object",
							"required": []string{"check_in", "check_out"},
							"properties": bson.M{
								"check_in": bson.M{
									"bsonType": "date",
								},
								"check_out": bson.M{
									"bsonType": "date",
								},
							},
						},
						"reservation_id": bson.M{
							"bsonType": "string",
						},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
