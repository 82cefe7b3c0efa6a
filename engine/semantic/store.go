// Package semantic is the sole owner of all Qdrant operations: collection
// lifecycle, batched upsert, and top-k similarity search.
package semantic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Payload key names. These are the wire contract with stored vectors.
const (
	keyText    = "text"
	keyTitle   = "title"
	keySpeaker = "speaker"
	keyURL     = "url"
	keyTalkID  = "talk_id"
	keyTopics  = "topics"
	keyViews   = "views"
	keyChunk   = "chunk_key"
)

// VectorStore talks to Qdrant over gRPC.
type VectorStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New creates a VectorStore connected to Qdrant at the given gRPC address.
func New(addr string, collection string) (*VectorStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &VectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (v *VectorStore) Close() error {
	return v.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist.
func (v *VectorStore) EnsureCollection(ctx context.Context, dims int) error {
	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == v.collection {
			return nil
		}
	}

	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: v.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", v.collection, err)
	}
	return nil
}

// PointID derives the deterministic Qdrant point id for a chunk key.
// Upserting the same key always targets the same point: last write wins.
func PointID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// Upsert stores vector records, overwriting any existing points with the
// same keys. Called by engine/ingest.
func (v *VectorStore) Upsert(ctx context.Context, records []VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(r.Key)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Embedding},
				},
			},
			Payload: toPayload(r),
		}
	}

	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(records), err)
	}
	return nil
}

// Search performs k-NN similarity search with payloads included, returning
// hits in Qdrant's order (descending score). Called by engine/rag.
func (v *VectorStore) Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	resp, err := v.points.Search(ctx, &pb.SearchPoints{
		CollectionName: v.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: search: %w", err)
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		results[i] = SearchResult{
			Key:   r.GetPayload()[keyChunk].GetStringValue(),
			Score: r.GetScore(),
			Meta:  fromPayload(r.GetPayload()),
		}
	}
	return results, nil
}

func toPayload(r VectorRecord) map[string]*pb.Value {
	return map[string]*pb.Value{
		keyText:    {Kind: &pb.Value_StringValue{StringValue: r.Meta.Text}},
		keyTitle:   {Kind: &pb.Value_StringValue{StringValue: r.Meta.Title}},
		keySpeaker: {Kind: &pb.Value_StringValue{StringValue: r.Meta.Speaker}},
		keyURL:     {Kind: &pb.Value_StringValue{StringValue: r.Meta.URL}},
		keyTalkID:  {Kind: &pb.Value_StringValue{StringValue: r.Meta.TalkID}},
		keyTopics:  {Kind: &pb.Value_StringValue{StringValue: r.Meta.Topics}},
		keyViews:   {Kind: &pb.Value_IntegerValue{IntegerValue: int64(r.Meta.Views)}},
		keyChunk:   {Kind: &pb.Value_StringValue{StringValue: r.Key}},
	}
}

func fromPayload(p map[string]*pb.Value) Metadata {
	return Metadata{
		Text:    p[keyText].GetStringValue(),
		Title:   p[keyTitle].GetStringValue(),
		Speaker: p[keySpeaker].GetStringValue(),
		URL:     p[keyURL].GetStringValue(),
		TalkID:  p[keyTalkID].GetStringValue(),
		Topics:  p[keyTopics].GetStringValue(),
		Views:   int(p[keyViews].GetIntegerValue()),
	}
}
