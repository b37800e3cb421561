package mongodao

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository/dao"
)

type UserDAO struct {
	users *mongo.Collection
}

func NewUserDAO(db *mongo.Database) *UserDAO {
	return &UserDAO{
		users: db.Collection(usersCollection),
	}
}

func (d *UserDAO) Insert(ctx context.Context, user dao.User) (dao.User, error) {
	if user.ID == "" {
		user.ID = dao.NewID()
	}
	if user.Role == "" {
		user.Role = "USER"
	}
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt

	if _, err := d.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return dao.User{}, dao.ErrUserEmailExists
		}

		return dao.User{}, err
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id string) (dao.User, error) {
	return d.findOne(ctx, bson.M{"_id": id})
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (dao.User, error) {
	return d.findOne(ctx, bson.M{"email": email})
}

func (d *UserDAO) findOne(ctx context.Context, filter bson.M) (dao.User, error) {
	var user dao.User
	if err := d.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dao.User{}, dao.ErrUserNotFound
		}

		return dao.User{}, err
	}

	return user, nil
}

func (d *UserDAO) FindAll(ctx context.Context) ([]dao.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := d.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	users := []dao.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	return users, nil
}

func (d *UserDAO) Update(ctx context.Context, user dao.User) (dao.User, error) {
	update := bson.M{"$set": bson.M{
		"name":      user.Name,
		"email":     user.Email,
		"role":      user.Role,
		"updatedAt": now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated dao.User
	if err := d.users.FindOneAndUpdate(ctx, bson.M{"_id": user.ID}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dao.User{}, dao.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return dao.User{}, dao.ErrUserEmailExists
		}

		return dao.User{}, err
	}

	return updated, nil
}

func (d *UserDAO) Delete(ctx context.Context, id string) error {
	res, err := d.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return dao.ErrUserNotFound
	}

	return nil
}
