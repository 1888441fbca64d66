// Package dynamodb implements the generic record store on a single
// DynamoDB table. Every concept collection shares the table; items are
// keyed by a collection partition key and a record id sort key.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mosaic-backend/infrastructure/persistence/store"
	pkgerrors "mosaic-backend/pkg/errors"
)

const (
	attrPK = "pk"
	attrSK = "sk"
)

// Store persists one concept collection in the shared table.
type Store[T store.Document] struct {
	client     *dynamodb.Client
	table      string
	collection string
	logger     *zap.Logger
}

// NewStore creates a store for the named collection.
func NewStore[T store.Document](client *dynamodb.Client, table, collection string, logger *zap.Logger) *Store[T] {
	return &Store[T]{
		client:     client,
		table:      table,
		collection: collection,
		logger:     logger,
	}
}

func (s *Store[T]) partitionKey() string { return "CONCEPT#" + s.collection }

func (s *Store[T]) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: s.partitionKey()},
		attrSK: &types.AttributeValueMemberS{Value: "ID#" + id},
	}
}

// Create allocates an id, stamps timestamps and writes the record. The
// conditional put guards against the (theoretical) id collision instead
// of silently overwriting.
func (s *Store[T]) Create(ctx context.Context, doc T) (string, error) {
	id := uuid.NewString()
	store.Prepare(doc, id, time.Now().UTC())

	item, err := marshalDoc(doc)
	if err != nil {
		return "", pkgerrors.NewDatabaseError("create", err)
	}
	for k, v := range s.key(id) {
		item[k] = v
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(attrSK))).
		Build()
	if err != nil {
		return "", pkgerrors.NewDatabaseError("create", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.table),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return "", pkgerrors.NewDatabaseError("create", err)
	}

	s.logger.Debug("record created",
		zap.String("collection", s.collection),
		zap.String("id", id),
	)
	return id, nil
}

// FindOne returns the first record matching the criteria.
func (s *Store[T]) FindOne(ctx context.Context, criteria store.Criteria) (T, error) {
	var zero T

	docs, err := s.query(ctx, criteria)
	if err != nil {
		return zero, err
	}
	if len(docs) == 0 {
		return zero, pkgerrors.NewNotFoundError("record")
	}
	return docs[0], nil
}

// FindMany returns every record matching the criteria in sort order.
func (s *Store[T]) FindMany(ctx context.Context, criteria store.Criteria) ([]T, error) {
	docs, err := s.query(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if criteria.Limit > 0 && len(docs) > criteria.Limit {
		docs = docs[:criteria.Limit]
	}
	return docs, nil
}

// UpdateOne merges the patch into the first matching record. The write is
// conditioned on the record still matching every filter field, so a record
// mutated between read and write fails with NOT_FOUND instead of being
// silently overwritten. That condition is the compare-and-set primitive
// the collaborative session's turn handling relies on.
func (s *Store[T]) UpdateOne(ctx context.Context, criteria store.Criteria, patch store.Patch) (T, error) {
	var zero T

	current, err := s.FindOne(ctx, criteria)
	if err != nil {
		return zero, err
	}

	update := expression.Set(expression.Name("updatedAt"), expression.Value(time.Now().UTC()))
	for field, value := range patch {
		update = update.Set(expression.Name(field), expression.Value(value))
	}

	condition := expression.AttributeExists(expression.Name(attrSK))
	filterCond, ok, err := buildCondition(criteria.Filters)
	if err != nil {
		return zero, pkgerrors.NewDatabaseError("update", err)
	}
	if ok {
		condition = condition.And(filterCond)
	}

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(condition).Build()
	if err != nil {
		return zero, pkgerrors.NewDatabaseError("update", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       s.key(current.DocumentID()),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return zero, pkgerrors.NewNotFoundError("record")
		}
		return zero, pkgerrors.NewDatabaseError("update", err)
	}

	updated, err := unmarshalDoc[T](out.Attributes)
	if err != nil {
		return zero, pkgerrors.NewDatabaseError("update", err)
	}

	s.logger.Debug("record updated",
		zap.String("collection", s.collection),
		zap.String("id", current.DocumentID()),
	)
	return updated, nil
}

// DeleteOne removes the first matching record, conditioned the same way
// as UpdateOne.
func (s *Store[T]) DeleteOne(ctx context.Context, criteria store.Criteria) error {
	current, err := s.FindOne(ctx, criteria)
	if err != nil {
		return err
	}

	condition := expression.AttributeExists(expression.Name(attrSK))
	filterCond, ok, err := buildCondition(criteria.Filters)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete", err)
	}
	if ok {
		condition = condition.And(filterCond)
	}

	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("delete", err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(s.table),
		Key:                       s.key(current.DocumentID()),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewNotFoundError("record")
		}
		return pkgerrors.NewDatabaseError("delete", err)
	}

	s.logger.Debug("record deleted",
		zap.String("collection", s.collection),
		zap.String("id", current.DocumentID()),
	)
	return nil
}

// query runs the collection partition query with the criteria filter and
// sorts the results client-side. Collections are small enough per owner
// that a sort-field GSI is not worth its write amplification here.
func (s *Store[T]) query(ctx context.Context, criteria store.Criteria) ([]T, error) {
	keyCond := expression.Key(attrPK).Equal(expression.Value(s.partitionKey()))

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	filterCond, ok, err := buildCondition(criteria.Filters)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query", err)
	}
	if ok {
		builder = builder.WithFilter(filterCond)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var docs []T
	var fieldViews []map[string]any

	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query", err)
		}
		for _, item := range page.Items {
			doc, err := unmarshalDoc[T](item)
			if err != nil {
				return nil, pkgerrors.NewDatabaseError("query", err)
			}
			fields, err := store.Fields(doc)
			if err != nil {
				return nil, pkgerrors.NewDatabaseError("query", err)
			}
			docs = append(docs, doc)
			fieldViews = append(fieldViews, fields)
		}
	}

	order := append([]store.SortOption{}, criteria.Sort...)
	order = append(order,
		store.SortOption{Field: "createdAt", Order: store.SortAscending},
		store.SortOption{Field: "id", Order: store.SortAscending},
	)
	indexes := make([]int, len(docs))
	for i := range indexes {
		indexes[i] = i
	}
	sort.SliceStable(indexes, func(i, j int) bool {
		return store.Less(fieldViews[indexes[i]], fieldViews[indexes[j]], order)
	})

	sorted := make([]T, len(docs))
	for i, idx := range indexes {
		sorted[i] = docs[idx]
	}
	return sorted, nil
}

func buildCondition(filters []store.Filter) (expression.ConditionBuilder, bool, error) {
	var cond expression.ConditionBuilder
	have := false

	for _, f := range filters {
		c, err := conditionFor(f)
		if err != nil {
			// Dropping a filter here would weaken the write condition,
			// so a malformed filter fails the whole operation.
			return expression.ConditionBuilder{}, false, err
		}
		if !have {
			cond = c
			have = true
		} else {
			cond = cond.And(c)
		}
	}
	return cond, have, nil
}

func conditionFor(f store.Filter) (expression.ConditionBuilder, error) {
	name := expression.Name(f.Field)
	value := expression.Value(f.Value)

	switch f.Op {
	case store.OpEqual, "":
		return name.Equal(value), nil
	case store.OpNotEqual:
		return name.NotEqual(value), nil
	case store.OpGreaterThan:
		return name.GreaterThan(value), nil
	case store.OpGreaterThanOrEqual:
		return name.GreaterThanEqual(value), nil
	case store.OpLessThan:
		return name.LessThan(value), nil
	case store.OpLessThanOrEqual:
		return name.LessThanEqual(value), nil
	case store.OpIn:
		values, err := operandList(f.Value)
		if err != nil {
			return expression.ConditionBuilder{}, err
		}
		if len(values) == 1 {
			return name.In(values[0]), nil
		}
		return name.In(values[0], values[1:]...), nil
	default:
		return expression.ConditionBuilder{}, fmt.Errorf("unsupported filter op %q", f.Op)
	}
}

func operandList(value any) ([]expression.OperandBuilder, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("in filter requires a slice value")
	}
	if rv.Len() == 0 {
		return nil, fmt.Errorf("in filter requires at least one value")
	}
	operands := make([]expression.OperandBuilder, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		operands = append(operands, expression.Value(rv.Index(i).Interface()))
	}
	return operands, nil
}

func marshalDoc(doc any) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMapWithOptions(doc, func(o *attributevalue.EncoderOptions) {
		o.TagKey = "json"
	})
}

func unmarshalDoc[T store.Document](item map[string]types.AttributeValue) (T, error) {
	var zero T

	elem := reflect.TypeOf(zero).Elem()
	doc := reflect.New(elem).Interface().(T)
	err := attributevalue.UnmarshalMapWithOptions(item, doc, func(o *attributevalue.DecoderOptions) {
		o.TagKey = "json"
	})
	if err != nil {
		return zero, err
	}
	return doc, nil
}
