package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"linkvault/entity"
	"linkvault/internal/config"
)

const (
	collectionChannels = "channels"
	collectionUsers    = "users"
	collectionLinks    = "links"
)

// activeUserWindowDays bounds the "active users" stat.
const activeUserWindowDays = 7

type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoClient(conf *config.Config) *MongoDB {
	if !conf.Mongo.Enabled {
		return nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	_ = connection.Disconnect(m.ctx)
}

// EnsureIndexes creates the unique keys and lookup indexes the bot relies
// on. Called once at startup.
func (m *MongoDB) EnsureIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	db := connection.Database(m.database)
	unique := options.Index().SetUnique(true)

	_, err = db.Collection(collectionChannels).Indexes().CreateOne(m.ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "channel_id", Value: 1}}, Options: unique,
	})
	if err != nil {
		return fmt.Errorf("channels index: %w", err)
	}
	_, err = db.Collection(collectionUsers).Indexes().CreateOne(m.ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique,
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	_, err = db.Collection(collectionLinks).Indexes().CreateMany(m.ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "channel_id", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("links indexes: %w", err)
	}
	return nil
}

// IsDuplicate reports whether an insert hit a unique index.
func IsDuplicate(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// --- channels ---

func (m *MongoDB) AddChannel(channel *entity.Channel) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionChannels)
	_, err = collection.InsertOne(m.ctx, channel)
	return err
}

// RemoveChannel deletes the registry record and cascades to every link
// that references the channel. Reports false when the channel was unknown.
func (m *MongoDB) RemoveChannel(channelId int64) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	db := connection.Database(m.database)
	result, err := db.Collection(collectionChannels).DeleteOne(m.ctx, bson.D{{Key: "channel_id", Value: channelId}})
	if err != nil {
		return false, err
	}
	if result.DeletedCount == 0 {
		return false, nil
	}
	_, err = db.Collection(collectionLinks).DeleteMany(m.ctx, bson.D{{Key: "channel_id", Value: channelId}})
	return true, err
}

func (m *MongoDB) GetChannel(channelId int64) (*entity.Channel, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionChannels)
	var channel entity.Channel
	err = collection.FindOne(m.ctx, bson.D{{Key: "channel_id", Value: channelId}}).Decode(&channel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	return &channel, nil
}

func (m *MongoDB) GetActiveChannels() ([]*entity.Channel, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionChannels)
	cursor, err := collection.Find(m.ctx, bson.D{{Key: "is_active", Value: true}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var channels []*entity.Channel
	err = cursor.All(m.ctx, &channels)
	if err != nil {
		return nil, err
	}
	return channels, nil
}

// IncrementChannelJoins bumps total_joins by one. The $inc stays atomic on
// the server, so concurrent issuances never lose a count.
func (m *MongoDB) IncrementChannelJoins(channelId int64) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionChannels)
	filter := bson.D{{Key: "channel_id", Value: channelId}}
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "total_joins", Value: 1}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
	}
	_, err = collection.UpdateOne(m.ctx, filter, update)
	return err
}

// --- users ---

// UpsertUser records first contact or refreshes the profile fields.
// joined_at and total_requests are written only on insert, so repeated
// /start calls never reset them.
func (m *MongoDB) UpsertUser(userId int64, username, firstName string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUsers)
	now := time.Now().UTC()
	filter := bson.D{{Key: "user_id", Value: userId}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "username", Value: username},
			{Key: "first_name", Value: firstName},
			{Key: "last_active", Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "user_id", Value: userId},
			{Key: "joined_at", Value: now},
			{Key: "total_requests", Value: int64(0)},
			{Key: "is_banned", Value: false},
		}},
	}
	opts := options.Update().SetUpsert(true)
	_, err = collection.UpdateOne(m.ctx, filter, update, opts)
	return err
}

// TouchUser marks an interaction: bumps last_active and total_requests.
func (m *MongoDB) TouchUser(userId int64) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUsers)
	filter := bson.D{{Key: "user_id", Value: userId}}
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "last_active", Value: time.Now().UTC()}}},
		{Key: "$inc", Value: bson.D{{Key: "total_requests", Value: 1}}},
	}
	_, err = collection.UpdateOne(m.ctx, filter, update)
	return err
}

func (m *MongoDB) GetUser(userId int64) (*entity.User, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUsers)
	var user entity.User
	err = collection.FindOne(m.ctx, bson.D{{Key: "user_id", Value: userId}}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	return &user, nil
}

func (m *MongoDB) GetAllUsers() ([]*entity.User, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUsers)
	cursor, err := collection.Find(m.ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var users []*entity.User
	err = cursor.All(m.ctx, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (m *MongoDB) SetUserBanned(userId int64, banned bool) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUsers)
	filter := bson.D{{Key: "user_id", Value: userId}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "is_banned", Value: banned}}}}
	_, err = collection.UpdateOne(m.ctx, filter, update)
	return err
}

// --- links ---

func (m *MongoDB) SaveLink(link *entity.Link) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionLinks)
	_, err = collection.InsertOne(m.ctx, link)
	return err
}

// DeleteExpiredLinks purges every link record past its expiry, active or
// not. The sweeper calls this on its interval.
func (m *MongoDB) DeleteExpiredLinks(now time.Time) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionLinks)
	result, err := collection.DeleteMany(m.ctx, bson.D{{Key: "expires_at", Value: bson.D{{Key: "$lt", Value: now}}}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// --- stats ---

func (m *MongoDB) Stats() (*entity.Stats, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	db := connection.Database(m.database)
	now := time.Now().UTC()
	stats := &entity.Stats{}

	stats.TotalUsers, err = db.Collection(collectionUsers).CountDocuments(m.ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	cutoff := now.AddDate(0, 0, -activeUserWindowDays)
	stats.ActiveUsers, err = db.Collection(collectionUsers).CountDocuments(m.ctx,
		bson.D{{Key: "last_active", Value: bson.D{{Key: "$gte", Value: cutoff}}}})
	if err != nil {
		return nil, err
	}
	stats.TotalChannels, err = db.Collection(collectionChannels).CountDocuments(m.ctx,
		bson.D{{Key: "is_active", Value: true}})
	if err != nil {
		return nil, err
	}
	stats.ActiveLinks, err = db.Collection(collectionLinks).CountDocuments(m.ctx, bson.D{
		{Key: "is_active", Value: true},
		{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: now}}},
	})
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$total_joins"}}},
		}}},
	}
	cursor, err := db.Collection(collectionChannels).Aggregate(m.ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)
	var grouped []struct {
		Total int64 `bson:"total"`
	}
	if err = cursor.All(m.ctx, &grouped); err != nil {
		return nil, err
	}
	if len(grouped) > 0 {
		stats.TotalJoins = grouped[0].Total
	}
	return stats, nil
}
