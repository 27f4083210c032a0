package validators

import "go.mongodb.org/mongo-driver/bson"

var StationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"address",
			"opening_time",
			"closing_time",
			"capacity",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"location": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"latitude": bson.M{
						"bsonType": "double",
						"minimum":  -90,
						"maximum":  90,
					},
					"longitude": bson.M{
						"bsonType": "double",
						"minimum":  -180,
						"maximum":  180,
					},
				},
			},

			"opening_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"closing_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"capacity": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  200,
			},

			"status": bson.M{
				"enum": []string{"active", "maintenance", "inactive"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
