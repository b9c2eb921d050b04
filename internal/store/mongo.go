package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens the MongoDB client backing MongoStore and verifies it with a
// ping against the primary, since the cascading deletes need a writable
// replica set member. The caller owns the client and disconnects it on
// shutdown.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// MongoStore implements Store on MongoDB. Authors and documents live in their
// own collections; the join relations are integer arrays on the document row,
// so the bulk edge cleanups map to a single UpdateMany with $pull.
//
// Cascading deletes run inside a session transaction, which requires the
// server to be a replica set member.
type MongoStore struct {
	client    *mongo.Client
	authors   *mongo.Collection
	documents *mongo.Collection
	counters  *mongo.Collection
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:    client,
		authors:   db.Collection("authors"),
		documents: db.Collection("documents"),
		counters:  db.Collection("counters"),
	}
}

// nextID draws from one counter document shared by both entity types.
func (s *MongoStore) nextID(ctx context.Context) (int, error) {
	res := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "entities"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	var doc struct {
		Seq int `bson:"seq"`
	}
	if err := res.Decode(&doc); err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

func (s *MongoStore) AuthorExists(ctx context.Context, id int) (bool, error) {
	n, err := s.authors.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MongoStore) FindAuthor(ctx context.Context, id int) (*AuthorRecord, error) {
	var rec AuthorRecord
	err := s.authors.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *MongoStore) FindAllAuthors(ctx context.Context) ([]AuthorRecord, error) {
	cur, err := s.authors.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []AuthorRecord{}
	for cur.Next(ctx) {
		var rec AuthorRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, cur.Err()
}

func (s *MongoStore) SaveAuthor(ctx context.Context, rec *AuthorRecord) (*AuthorRecord, error) {
	saved := *rec
	if saved.ID == 0 {
		id, err := s.nextID(ctx)
		if err != nil {
			return nil, err
		}
		saved.ID = id
		if _, err := s.authors.InsertOne(ctx, saved); err != nil {
			return nil, err
		}
		return &saved, nil
	}
	_, err := s.authors.ReplaceOne(ctx, bson.M{"_id": saved.ID}, saved, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *MongoStore) DeleteAuthor(ctx context.Context, id int) error {
	return s.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := s.documents.UpdateMany(sc, bson.M{}, bson.M{"$pull": bson.M{"authorIds": id}}); err != nil {
			return err
		}
		res, err := s.authors.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

func (s *MongoStore) DocumentExists(ctx context.Context, id int) (bool, error) {
	n, err := s.documents.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MongoStore) FindDocument(ctx context.Context, id int) (*DocumentRecord, error) {
	var rec DocumentRecord
	err := s.documents.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	normalizeEdges(&rec)
	return &rec, nil
}

func (s *MongoStore) FindAllDocuments(ctx context.Context) ([]DocumentRecord, error) {
	cur, err := s.documents.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []DocumentRecord{}
	for cur.Next(ctx) {
		var rec DocumentRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		normalizeEdges(&rec)
		out = append(out, rec)
	}
	return out, cur.Err()
}

func (s *MongoStore) SaveDocument(ctx context.Context, rec *DocumentRecord) (*DocumentRecord, error) {
	saved := *rec
	saved.AuthorIDs = dedupeIDs(rec.AuthorIDs)
	saved.ReferenceIDs = dedupeIDs(rec.ReferenceIDs)
	if saved.ID == 0 {
		id, err := s.nextID(ctx)
		if err != nil {
			return nil, err
		}
		saved.ID = id
		if _, err := s.documents.InsertOne(ctx, saved); err != nil {
			return nil, err
		}
		return &saved, nil
	}
	_, err := s.documents.ReplaceOne(ctx, bson.M{"_id": saved.ID}, saved, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *MongoStore) DeleteDocument(ctx context.Context, id int) error {
	return s.inTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := s.documents.UpdateMany(sc, bson.M{}, bson.M{"$pull": bson.M{"referenceIds": id}}); err != nil {
			return err
		}
		res, err := s.documents.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

func (s *MongoStore) inTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// normalizeEdges replaces nil edge arrays from old rows with empty ones.
func normalizeEdges(rec *DocumentRecord) {
	if rec.AuthorIDs == nil {
		rec.AuthorIDs = []int{}
	}
	if rec.ReferenceIDs == nil {
		rec.ReferenceIDs = []int{}
	}
}
