package apibatchv1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fulldump/box"

	"github.com/fulldump/stagedb/batch"
	"github.com/fulldump/stagedb/staging"
)

type MemberResponse struct {
	Id         int             `json:"id"`
	Record     json.RawMessage `json:"record"`
	Visible    staging.Record  `json:"visible"`
	Delta      staging.Record  `json:"delta"`
	Tombstones []string        `json:"tombstones"`
	Armed      bool            `json:"armed"`
	Revoked    bool            `json:"revoked"`
}

func getMember(ctx context.Context, w http.ResponseWriter) (*MemberResponse, error) {

	b, err := currentBatch(ctx)
	if err != nil {
		return nil, err
	}

	memberId, err := strconv.Atoi(box.GetUrlParameter(ctx, "memberId"))
	if err != nil {
		return nil, fmt.Errorf("%w: member id: %s", ErrInvalidInput, err.Error())
	}

	member, found := b.FindByID(memberId)
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrMemberNotFound, memberId)
	}

	return newMemberResponse(member)
}

// newMemberResponse leaves Visible empty once the member is revoked, even if
// that happens while the response is being built.
func newMemberResponse(member *batch.Member) (*MemberResponse, error) {

	visible, err := member.View.Snapshot()
	revoked := errors.Is(err, staging.ErrRevoked)
	if err != nil && !revoked {
		return nil, err
	}

	t := member.Transaction
	return &MemberResponse{
		Id:         t.ID(),
		Record:     json.RawMessage(t.String()),
		Visible:    visible,
		Delta:      t.Delta(),
		Tombstones: t.Tombstones(),
		Armed:      t.Armed(),
		Revoked:    revoked || t.Revoked(),
	}, nil
}
