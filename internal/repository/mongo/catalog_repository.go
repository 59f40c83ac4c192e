package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/Archer110/nexus/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultImage = "https://placehold.co/600x400"

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	Image       string             `bson:"image"`
	Description string             `bson:"description"`
	Specs       bson.M             `bson:"specs,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d *productDocument) toDomain() *domain.Product {
	return &domain.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		ImageURL:    d.Image,
		Specs:       map[string]any(d.Specs),
		CreatedAt:   d.CreatedAt,
	}
}

type CatalogRepository struct {
	collection *mongo.Collection
}

func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{
		collection: db.Collection("products"),
	}
}

func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProductNotFound
	}

	var doc productDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return doc.toDomain(), nil
}

// GetProducts fetches every product in ids in one query. Unknown or malformed
// ids are skipped; callers compare lengths to detect them.
func (r *CatalogRepository) GetProducts(ctx context.Context, ids []string) ([]*domain.Product, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return decodeProducts(ctx, cursor)
}

func (r *CatalogRepository) ListProducts(ctx context.Context, q domain.CatalogQuery) ([]*domain.Product, int64, error) {
	filter := catalogFilter(q)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(q.Skip())
	if q.PerPage > 0 {
		opts.SetLimit(int64(q.PerPage))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	products, err := decodeProducts(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func catalogFilter(q domain.CatalogQuery) bson.M {
	filter := bson.M{}
	if q.Search != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	for key, values := range q.SpecFilters {
		field := "specs." + key
		switch len(values) {
		case 0:
		case 1:
			filter[field] = values[0]
		default:
			filter[field] = bson.M{"$in": values}
		}
	}
	return filter
}

func (r *CatalogRepository) Categories(ctx context.Context) ([]string, error) {
	raw, err := r.collection.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			categories = append(categories, s)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// SpecFacets returns, for products in category, every spec key with at least
// two distinct string values.
func (r *CatalogRepository) SpecFacets(ctx context.Context, category string) (map[string][]string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"category": category}}},
		{{Key: "$project", Value: bson.M{"specs": bson.M{"$objectToArray": "$specs"}}}},
		{{Key: "$unwind", Value: "$specs"}},
		{{Key: "$match", Value: bson.M{"specs.v": bson.M{"$type": "string"}}}},
		{{Key: "$group", Value: bson.M{"_id": "$specs.k", "values": bson.M{"$addToSet": "$specs.v"}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate facets: %w", err)
	}
	defer cursor.Close(ctx)

	facets := make(map[string][]string)
	for cursor.Next(ctx) {
		var row struct {
			Key    string   `bson:"_id"`
			Values []string `bson:"values"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode facet: %w", err)
		}
		if len(row.Values) > 1 {
			sort.Strings(row.Values)
			facets[row.Key] = row.Values
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}
	return facets, nil
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.ImageURL == "" {
		p.ImageURL = defaultImage
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	doc := productDocument{
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		Image:       p.ImageURL,
		Description: p.Description,
		Specs:       bson.M(p.Specs),
		CreatedAt:   p.CreatedAt,
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *CatalogRepository) UpdatePrice(ctx context.Context, id string, price float64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrProductNotFound
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"price": price}})
	if err != nil {
		return fmt.Errorf("failed to update price: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *CatalogRepository) DeleteProduct(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrProductNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *CatalogRepository) CountProducts(ctx context.Context) (int64, error) {
	n, err := r.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (r *CatalogRepository) CategoryBreakdown(ctx context.Context) ([]domain.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []domain.CategoryCount
	for cursor.Next(ctx) {
		var row struct {
			Category string `bson:"_id"`
			Count    int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode category count: %w", err)
		}
		stats = append(stats, domain.CategoryCount{Category: row.Category, Count: row.Count})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}
	return stats, nil
}

func (r *CatalogRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]*domain.Product, error) {
	defer cursor.Close(ctx)

	var products []*domain.Product
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}
	return products, nil
}
