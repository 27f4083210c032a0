package validators

import "go.mongodb.org/mongo-driver/bson"

var TimeSlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"station_id",
			"date",
			"start_time",
			"end_time",
			"total_spots",
			"available_spots",
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			// Deterministic id: <station_id>_<date>_<start_time>.
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  "^[a-f0-9]{24}_\\d{4}-\\d{2}-\\d{2}_([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"station_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  "^\\d{4}-\\d{2}-\\d{2}$",
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"total_spots": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"available_spots": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"status": bson.M{
				"enum": []string{"available", "booked"},
			},

			"generated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
