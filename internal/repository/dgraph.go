package repository

import (
	"context"
	"fmt"

	"SportsSync/internal/config"

	"github.com/dgraph-io/dgo/v230"
	"github.com/dgraph-io/dgo/v230/protos/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// graphSchema 图库 schema；Alter 对同一 schema 幂等
const graphSchema = `
type Player {
	player_id
	name
	position
	season_stats
	plays_for
	participated_in
}

type Team {
	team_id
	name
	has_players
	competed_in
}

type Game {
	game_id
	date
	stage
	team1_score
	team2_score
	team1
	team2
	players
}

player_id: string @index(exact) @upsert .
name: string @index(exact, trigram) .
position: string @index(exact) .
season_stats: string .
plays_for: [uid] @reverse .
participated_in: [uid] @reverse .

team_id: string @index(exact) @upsert .
has_players: [uid] @reverse .
competed_in: [uid] @reverse .

game_id: string @index(exact) @upsert .
date: datetime @index(hour) .
stage: string @index(exact) .
team1_score: int .
team2_score: int .
team1: uid .
team2: uid .
players: [uid] .
`

// ConnectDgraph 建立 gRPC 连接（只拨号一次，不重试）。调用方负责关闭返回的连接
func ConnectDgraph(cfg config.DgraphConfig) (*dgo.Dgraph, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("连接Dgraph失败(%s): %w", cfg.Addr, err)
	}
	return dgo.NewDgraphClient(api.NewDgraphClient(conn)), conn, nil
}

// dgraphTxn 与 *dgo.Txn 方法一致，便于测试注入
type dgraphTxn interface {
	QueryWithVars(ctx context.Context, q string, vars map[string]string) (*api.Response, error)
	Mutate(ctx context.Context, mu *api.Mutation) (*api.Response, error)
	Do(ctx context.Context, req *api.Request) (*api.Response, error)
	Discard(ctx context.Context) error
}

type dgraphClient interface {
	newReadOnlyTxn() dgraphTxn
	newTxn() dgraphTxn
	alter(ctx context.Context, op *api.Operation) error
}

type dgoClient struct {
	dg *dgo.Dgraph
}

func (c dgoClient) newReadOnlyTxn() dgraphTxn { return c.dg.NewReadOnlyTxn() }

func (c dgoClient) newTxn() dgraphTxn { return c.dg.NewTxn() }

func (c dgoClient) alter(ctx context.Context, op *api.Operation) error { return c.dg.Alter(ctx, op) }
