// internal/repository/user_repository.go
package repository

import (
	"context"
	"time"

	"go-quickstart/internal/database"
	"go-quickstart/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

//go:generate mockgen -destination=mock_user_repository.go -package=repository go-quickstart/internal/repository UserRepository

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByProvider(ctx context.Context, field, providerID string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, update UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expires time.Time) error
	ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error)
	LinkProvider(ctx context.Context, id primitive.ObjectID, field, providerID string) error
}

// UserUpdate is a partial update; nil fields are left unchanged.
type UserUpdate struct {
	Name         *string
	Phone        *string
	Email        *string
	Role         *string
	Department   *string
	Password     *string
	IsActive     *bool
	IsAdmin      *bool
	ProfilePhoto []models.Photo
}

// Set renders the update as a $set document.
func (u UserUpdate) Set() bson.M {
	set := bson.M{}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("name", u.Name)
	put("phone", u.Phone)
	put("email", u.Email)
	put("role", u.Role)
	put("department", u.Department)
	put("password", u.Password)
	if u.IsActive != nil {
		set["isActive"] = *u.IsActive
	}
	if u.IsAdmin != nil {
		set["isAdmin"] = *u.IsAdmin
	}
	if u.ProfilePhoto != nil {
		set["profilePhoto"] = u.ProfilePhoto
	}
	return set
}

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(database.UsersCollection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.ProfilePhoto == nil {
		user.ProfilePhoto = []models.Photo{}
	}
	result, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return translate(err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByProvider looks a user up by an OAuth id field such as googleId.
func (r *MongoUserRepository) FindByProvider(ctx context.Context, field, providerID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{field: providerID})
}

func (r *MongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetProjection(bson.M{"password": 0, "otp": 0, "otpExpires": 0})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, id primitive.ObjectID, update UserUpdate) (*models.User, error) {
	set := update.Set()
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expires time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"otp": otp, "otpExpires": expires}})
}

func (r *MongoUserRepository) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set":   bson.M{"password": passwordHash},
		"$unset": bson.M{"otp": "", "otpExpires": ""},
	})
}

func (r *MongoUserRepository) ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.coll.UpdateMany(ctx,
		bson.M{"otpExpires": bson.M{"$lt": now}},
		bson.M{"$unset": bson.M{"otp": "", "otpExpires": ""}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *MongoUserRepository) LinkProvider(ctx context.Context, id primitive.ObjectID, field, providerID string) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{field: providerID}})
}

func (r *MongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
