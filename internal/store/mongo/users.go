package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"midtownwebserver/internal/domain"
)

const usersCollection = "users"

type UsersStore struct {
	coll *mongo.Collection
}

func NewUsersStore(db *mongo.Database) *UsersStore {
	return &UsersStore{coll: db.Collection(usersCollection)}
}

type userDoc struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	Name          string        `bson:"name"`
	Email         string        `bson:"email"`
	Phone         string        `bson:"phone,omitempty"`
	PasswordHash  string        `bson:"passwordHash"`
	Role          string        `bson:"role"`
	IsActive      bool          `bson:"isActive"`
	EmailVerified bool          `bson:"emailVerified"`

	VerificationToken   *string    `bson:"verificationToken,omitempty"`
	VerificationExpire  *time.Time `bson:"verificationExpire,omitempty"`
	ResetPasswordToken  *string    `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpire *time.Time `bson:"resetPasswordExpire,omitempty"`

	LastLogin *time.Time `bson:"lastLogin,omitempty"`
	CreatedAt time.Time  `bson:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt"`
}

func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Email:         d.Email,
		Phone:         d.Phone,
		Role:          domain.Role(d.Role),
		IsActive:      d.IsActive,
		EmailVerified: d.EmailVerified,
		LastLogin:     d.LastLogin,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func ensureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "verificationToken", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	return nil
}

// CreateUser inserts a new account. The unique index on email makes the
// duplicate check atomic: a collision fails the insert without leaving a
// partial record.
func (s *UsersStore) CreateUser(ctx context.Context, name, email, phone, passwordHash string, role domain.Role) (domain.User, error) {
	now := time.Now().UTC()
	doc := userDoc{
		Name:          name,
		Email:         email,
		Phone:         phone,
		PasswordHash:  passwordHash,
		Role:          string(role),
		IsActive:      true,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	doc.ID = res.InsertedID.(bson.ObjectID)
	return doc.toDomain(), nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.User{}, domain.ErrNotFound
	}

	var doc userDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return doc.toDomain(), nil
}

// GetUserByEmail is the one lookup that exposes the password hash; it backs
// credential checks only.
func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithSecrets, error) {
	var doc userDoc
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.UserWithSecrets{}, domain.ErrNotFound
		}
		return domain.UserWithSecrets{}, fmt.Errorf("get user by email: %w", err)
	}
	return domain.UserWithSecrets{User: doc.toDomain(), PasswordHash: doc.PasswordHash}, nil
}

func (s *UsersStore) GetUserWithSecretsByID(ctx context.Context, id string) (domain.UserWithSecrets, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.UserWithSecrets{}, domain.ErrNotFound
	}

	var doc userDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.UserWithSecrets{}, domain.ErrNotFound
		}
		return domain.UserWithSecrets{}, fmt.Errorf("get user secrets by id: %w", err)
	}
	return domain.UserWithSecrets{User: doc.toDomain(), PasswordHash: doc.PasswordHash}, nil
}

// SetLastLogin is a narrow field update; it deliberately skips updatedAt so a
// login stamp does not look like a profile change.
func (s *UsersStore) SetLastLogin(ctx context.Context, id string, when time.Time) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	if _, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"lastLogin": when}}); err != nil {
		return fmt.Errorf("set last login: %w", err)
	}
	return nil
}

func (s *UsersStore) SetVerificationToken(ctx context.Context, id string, pair domain.TokenPair) error {
	return s.setTokenPair(ctx, id, "verificationToken", "verificationExpire", pair)
}

func (s *UsersStore) SetResetToken(ctx context.Context, id string, pair domain.TokenPair) error {
	return s.setTokenPair(ctx, id, "resetPasswordToken", "resetPasswordExpire", pair)
}

func (s *UsersStore) setTokenPair(ctx context.Context, id, hashField, expireField string, pair domain.TokenPair) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	res, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		hashField:   pair.Hash,
		expireField: pair.ExpiresAt,
	}})
	if err != nil {
		return fmt.Errorf("set %s: %w", hashField, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearResetToken removes a pending reset pair, used to roll back when the
// reset email cannot be delivered.
func (s *UsersStore) ClearResetToken(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	_, err = s.coll.UpdateByID(ctx, oid, bson.M{"$unset": bson.M{
		"resetPasswordToken":  "",
		"resetPasswordExpire": "",
	}})
	if err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return nil
}

// ConsumeVerificationToken matches the token hash and an unexpired expiry in
// a single conditional update, flipping emailVerified and clearing both token
// fields atomically.
func (s *UsersStore) ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	filter := bson.M{
		"verificationToken":  tokenHash,
		"verificationExpire": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"emailVerified": true, "updatedAt": now},
		"$unset": bson.M{"verificationToken": "", "verificationExpire": ""},
	}

	var doc userDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrTokenInvalid
		}
		return domain.User{}, fmt.Errorf("consume verification token: %w", err)
	}
	return doc.toDomain(), nil
}

// ConsumeResetToken applies the same hash-and-expiry condition as email
// verification, replacing the password hash and clearing the reset pair in
// one update.
func (s *UsersStore) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (domain.User, error) {
	filter := bson.M{
		"resetPasswordToken":  tokenHash,
		"resetPasswordExpire": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"passwordHash": newPasswordHash, "updatedAt": now},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	}

	var doc userDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrTokenInvalid
		}
		return domain.User{}, fmt.Errorf("consume reset token: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *UsersStore) SetPasswordHash(ctx context.Context, id, passwordHash string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"passwordHash": passwordHash,
		"updatedAt":    time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkEmailVerified flips the flag without a token. Used by the startup
// admin bootstrap.
func (s *UsersStore) MarkEmailVerified(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"emailVerified": true,
		"updatedAt":     time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) UpdateDetails(ctx context.Context, id, name, email, phone string) (domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.User{}, domain.ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":      name,
		"email":     email,
		"phone":     phone,
		"updatedAt": time.Now().UTC(),
	}}

	var doc userDoc
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("update details: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *UsersStore) AdminUpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.User{}, domain.ErrNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Role != nil {
		set["role"] = string(*upd.Role)
	}
	if upd.IsActive != nil {
		set["isActive"] = *upd.IsActive
	}

	var doc userDoc
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("admin update user: %w", err)
	}
	return doc.toDomain(), nil
}

// ToggleActive flips isActive in an aggregation-pipeline update, so two
// concurrent toggles cannot read the same starting value.
func (s *UsersStore) ToggleActive(ctx context.Context, id string) (domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.User{}, domain.ErrNotFound
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"isActive":  bson.M{"$not": "$isActive"},
			"updatedAt": time.Now().UTC(),
		}}},
	}

	var doc userDoc
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("toggle active: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *UsersStore) DeleteUser(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Stats runs the per-role aggregation plus the headline counters the admin
// dashboard shows.
func (s *UsersStore) Stats(ctx context.Context, now time.Time) (domain.UserStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$role",
			"count": bson.M{"$sum": 1},
			"active": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$isActive", true}}, 1, 0},
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("user stats: %w", err)
	}
	defer cur.Close(ctx)

	var stats domain.UserStats
	for cur.Next(ctx) {
		var row struct {
			Role   string `bson:"_id"`
			Count  int64  `bson:"count"`
			Active int64  `bson:"active"`
		}
		if err := cur.Decode(&row); err != nil {
			return domain.UserStats{}, fmt.Errorf("decode stats row: %w", err)
		}
		stats.ByRole = append(stats.ByRole, domain.RoleStats{
			Role:     domain.Role(row.Role),
			Count:    row.Count,
			Active:   row.Active,
			Inactive: row.Count - row.Active,
		})
		stats.Total += row.Count
		stats.Active += row.Active
	}
	if err := cur.Err(); err != nil {
		return domain.UserStats{}, fmt.Errorf("user stats: %w", err)
	}
	stats.Inactive = stats.Total - stats.Active

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	newToday, err := s.coll.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": startOfDay}})
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("count new users: %w", err)
	}
	stats.NewToday = newToday

	return stats, nil
}
