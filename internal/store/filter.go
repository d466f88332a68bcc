package store

import (
	"regexp"
	"strings"

	"github.com/qcbd/app-beneficiary/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// applicationQuery translates filter into a MongoDB query
func applicationQuery(filter models.ApplicationFilter) bson.M {
	query := bson.M{}

	if len(filter.Status) > 0 {
		query["status"] = bson.M{"$in": filter.Status}
	}
	if district := strings.TrimSpace(filter.District); district != "" {
		query["address.permanent.district"] = bson.M{"$regex": "^" + regexp.QuoteMeta(district) + "$", "$options": "i"}
	}
	if filter.Gender != "" {
		query["primary_information.gender"] = filter.Gender
	}
	if filter.CreatedBy != "" {
		query["created_by"] = filter.CreatedBy
	}

	created := bson.M{}
	if filter.CreatedFrom != nil {
		created["$gte"] = *filter.CreatedFrom
	}
	if filter.CreatedTo != nil {
		created["$lte"] = *filter.CreatedTo
	}
	if len(created) > 0 {
		query["created_at"] = created
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"primary_information.full_name": pattern},
			bson.M{"primary_information.fathers_name": pattern},
			bson.M{"primary_information.bc_registration": pattern},
			bson.M{"_id": search},
		}
	}

	return query
}

// matchesFilter applies filter to app in memory, mirroring applicationQuery
func matchesFilter(app *models.OrphanApplication, filter models.ApplicationFilter) bool {
	if len(filter.Status) > 0 {
		found := false
		for _, s := range filter.Status {
			if app.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if district := strings.TrimSpace(filter.District); district != "" && !strings.EqualFold(app.Address.Permanent.District, district) {
		return false
	}
	if filter.Gender != "" && app.PrimaryInformation.Gender != filter.Gender {
		return false
	}
	if filter.CreatedBy != "" && app.CreatedBy != filter.CreatedBy {
		return false
	}
	if filter.CreatedFrom != nil && app.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && app.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		p := app.PrimaryInformation
		if !strings.Contains(strings.ToLower(p.FullName), search) &&
			!strings.Contains(strings.ToLower(p.FathersName), search) &&
			!strings.Contains(strings.ToLower(p.BCRegistration), search) &&
			app.ID != strings.TrimSpace(filter.Search) {
			return false
		}
	}
	return true
}
