package mongodao

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/repository/dao"
)

type CommentDAO struct {
	comments *mongo.Collection
}

func NewCommentDAO(db *mongo.Database) *CommentDAO {
	return &CommentDAO{
		comments: db.Collection(commentsCollection),
	}
}

func (d *CommentDAO) Insert(ctx context.Context, comment dao.Comment) (dao.Comment, error) {
	if comment.ID == "" {
		comment.ID = dao.NewID()
	}
	comment.CreatedAt = now()
	comment.UpdatedAt = comment.CreatedAt

	if _, err := d.comments.InsertOne(ctx, comment); err != nil {
		return dao.Comment{}, err
	}

	return comment, nil
}

func (d *CommentDAO) FindByID(ctx context.Context, id string) (dao.Comment, error) {
	var comment dao.Comment
	if err := d.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dao.Comment{}, dao.ErrCommentNotFound
		}

		return dao.Comment{}, err
	}

	return comment, nil
}

func (d *CommentDAO) FindByEventID(ctx context.Context, eventID string) ([]dao.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := d.comments.Find(ctx, bson.M{"eventId": eventID}, opts)
	if err != nil {
		return nil, err
	}

	comments := []dao.Comment{}
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}

	return comments, nil
}

func (d *CommentDAO) Update(ctx context.Context, comment dao.Comment) (dao.Comment, error) {
	update := bson.M{"$set": bson.M{
		"content":   comment.Content,
		"updatedAt": now(),
	}}
	if comment.Rating != nil {
		update["$set"].(bson.M)["rating"] = *comment.Rating
	} else {
		update["$unset"] = bson.M{"rating": ""}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated dao.Comment
	if err := d.comments.FindOneAndUpdate(ctx, bson.M{"_id": comment.ID}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dao.Comment{}, dao.ErrCommentNotFound
		}

		return dao.Comment{}, err
	}

	return updated, nil
}

func (d *CommentDAO) Delete(ctx context.Context, id string) error {
	res, err := d.comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return dao.ErrCommentNotFound
	}

	return nil
}
