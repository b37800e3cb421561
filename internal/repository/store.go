package repository

import (
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository/dao"
	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository/mongodao"
)

// Store bundles the data access objects of one storage backend.
type Store struct {
	Users         UserDAO
	Events        EventDAO
	Registrations RegistrationDAO
	Comments      CommentDAO
}

func NewPostgresStore(db *gorm.DB) Store {
	return Store{
		Users:         dao.NewUserDAO(db),
		Events:        dao.NewEventDAO(db),
		Registrations: dao.NewRegistrationDAO(db),
		Comments:      dao.NewCommentDAO(db),
	}
}

func NewMongoStore(db *mongo.Database) Store {
	return Store{
		Users:         mongodao.NewUserDAO(db),
		Events:        mongodao.NewEventDAO(db),
		Registrations: mongodao.NewRegistrationDAO(db),
		Comments:      mongodao.NewCommentDAO(db),
	}
}
