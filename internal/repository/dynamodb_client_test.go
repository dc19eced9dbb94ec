package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"catalog-skill/internal/domain"
)

type fakeDynamo struct {
	getOut       *dynamodb.GetItemOutput
	getErr       error
	txErr        error
	lastGetInput *dynamodb.GetItemInput
	lastTxInput  *dynamodb.TransactWriteItemsInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGetInput = in
	return f.getOut, f.getErr
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.lastTxInput = in
	return &dynamodb.TransactWriteItemsOutput{}, f.txErr
}

func makeMetaItem(pk string, turns int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":    &types.AttributeValueMemberS{Value: pk},
		"SK":    &types.AttributeValueMemberS{Value: skMeta},
		"turns": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", turns)},
	}
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "test-table")
	require.NoError(t, err)
	return c
}

func TestGetConversationTurnCount_HappyPath(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: makeMetaItem("SESS#abc", 7)}}
	c := mustNewClient(t, db)
	turns, err := c.GetConversationTurnCount(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, 7, turns)
	require.NotNil(t, db.lastGetInput)
}

func TestGetConversationTurnCount_MissingMeta(t *testing.T) {
	db := &fakeDynamo{getOut: &dynamodb.GetItemOutput{}}
	c := mustNewClient(t, db)
	turns, err := c.GetConversationTurnCount(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, 0, turns)
}

func TestGetConversationTurnCount_GetItemError(t *testing.T) {
	db := &fakeDynamo{getErr: errors.New("boom")}
	c := mustNewClient(t, db)
	_, err := c.GetConversationTurnCount(context.Background(), "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "GetConversationTurnCount")
}

func TestGetConversationTurnCount_MalformedTurns(t *testing.T) {
	db := &fakeDynamo{
		getOut: &dynamodb.GetItemOutput{
			Item: map[string]types.AttributeValue{
				"PK":    &types.AttributeValueMemberS{Value: "SESS#abc"},
				"SK":    &types.AttributeValueMemberS{Value: skMeta},
				"turns": &types.AttributeValueMemberS{Value: "bad"},
			},
		},
	}
	c := mustNewClient(t, db)
	_, err := c.GetConversationTurnCount(context.Background(), "abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode turns")
}

func TestSaveTurn_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	turn := NewTurnRecord("abc", "GetProductIntent", "Acme Anvil 3000.", "123")
	meta := NewConversationMeta("abc", 2)

	err := c.SaveTurn(context.Background(), turn, meta)
	require.NoError(t, err)
	require.NotNil(t, db.lastTxInput)
	require.Len(t, db.lastTxInput.TransactItems, 2)
	require.Equal(t, "attribute_not_exists(PK) AND attribute_not_exists(SK)", *db.lastTxInput.TransactItems[0].Put.ConditionExpression)
	require.Equal(t, "123", db.lastTxInput.TransactItems[0].Put.Item["productId"].(*types.AttributeValueMemberS).Value)
}

func TestSaveTurn_DynamoError(t *testing.T) {
	db := &fakeDynamo{txErr: errors.New("transaction canceled")}
	c := mustNewClient(t, db)
	err := c.SaveTurn(context.Background(), NewTurnRecord("abc", "GetProductIntent", "speech", ""), NewConversationMeta("abc", 2))
	require.Error(t, err)
	require.Contains(t, err.Error(), "SaveTurn")
}

func TestSaveTurn_MissingTurnPK(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	err := c.SaveTurn(context.Background(), domain.TurnRecord{SK: "TURN#ts"}, NewConversationMeta("abc", 1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "turn PK")
}

func TestSaveTurn_MissingMetaPK(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	err := c.SaveTurn(context.Background(), NewTurnRecord("abc", "GetProductIntent", "speech", ""), domain.ConversationMeta{SK: skMeta})
	require.Error(t, err)
	require.Contains(t, err.Error(), "meta PK")
}

func TestSaveCompletedTurn_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	err := c.SaveCompletedTurn(context.Background(), "abc", "GetNextEventIntent", "This product's color is black. Anything else?", "", 3)
	require.NoError(t, err)
	require.NotNil(t, db.lastTxInput)
	require.Len(t, db.lastTxInput.TransactItems, 2)
	require.Equal(t, "3", db.lastTxInput.TransactItems[1].Put.Item["turns"].(*types.AttributeValueMemberN).Value)
}

func TestSaveCompletedTurn_DynamoError(t *testing.T) {
	db := &fakeDynamo{txErr: errors.New("transaction canceled")}
	c := mustNewClient(t, db)
	err := c.SaveCompletedTurn(context.Background(), "abc", "GetProductIntent", "speech", "123", 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "SaveCompletedTurn")
}

func TestNewTurnRecord_Fields(t *testing.T) {
	turn := NewTurnRecord("sess-1", "GetProductIntent", "Acme Anvil 3000.", "123")
	require.Equal(t, "SESS#sess-1", turn.PK)
	require.Contains(t, turn.SK, "TURN#")
	require.Equal(t, "GetProductIntent", turn.Intent)
	require.Equal(t, "123", turn.ProductID)
	require.Greater(t, turn.TTL, int64(0))
}

func TestNewConversationMeta_Fields(t *testing.T) {
	meta := NewConversationMeta("sess-2", 5)
	require.Equal(t, "SESS#sess-2", meta.PK)
	require.Equal(t, skMeta, meta.SK)
	require.Equal(t, 5, meta.Turns)
	require.NotEmpty(t, meta.LastActivity)
}

func TestSessPK(t *testing.T) {
	require.Equal(t, "SESS#my-session", sessPK("my-session"))
}

func TestTurnSK(t *testing.T) {
	ts := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	sk := turnSK(ts)
	require.Contains(t, sk, "TURN#")
	require.Contains(t, sk, "2026")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil, "test-table")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNew_EmptyTableName(t *testing.T) {
	_, err := New(&fakeDynamo{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}
