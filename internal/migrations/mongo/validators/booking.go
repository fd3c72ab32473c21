package validators

import "go.mongodb.org/mongo-driver/bson"

// BookingValidator accepts every generation of booking document the portal
// has written. Only the storage key is mandatory; the fields that exist are
// type-checked.
var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"docId",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"docId": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"id": bson.M{
				"bsonType": "string",
			},

			"status": bson.M{
				"bsonType": "string",
			},

			"approvalStatus": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"faculty": bson.M{
						"enum": []string{"pending", "approved", "rejected"},
					},
					"admin": bson.M{
						"enum": []string{"pending", "approved", "rejected"},
					},
				},
			},

			"decidedBy": bson.M{
				"enum": []string{"faculty", "admin"},
			},

			"faculty": bson.M{
				"bsonType": "string",
			},

			"equipment": bson.M{
				"bsonType": []string{"string", "object"},
			},

			"actualTimeRange": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"start": bson.M{"bsonType": "string"},
					"end":   bson.M{"bsonType": "string"},
				},
			},

			"isAdminCreated": bson.M{
				"bsonType": "bool",
			},
		},
	},
}
