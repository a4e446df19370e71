package apibatchv1

import (
	"github.com/fulldump/box"

	"github.com/fulldump/stagedb/service"
)

func BuildV1Batch(v1 *box.R, s service.Servicer) *box.R {

	batches := v1.Resource("/batches").
		WithActions(
			box.Get(listBatches),
			box.Post(createBatch),
		)

	v1.Resource("/batches/{batchName}").
		WithActions(
			box.Get(getBatch),
			box.ActionPost(dataset),
			box.ActionPost(find),
			box.ActionPost(update),
			box.ActionPost(deleteKey).WithName("delete"),
			box.ActionPost(commit),
			box.ActionPost(rollback),
			box.ActionPost(timeout),
			box.ActionPost(removeTimer),
			box.ActionPost(stop),
			box.ActionPost(logs),
			box.ActionPost(cloneBatch).WithName("clone"),
			box.ActionPost(dropBatch),
		)

	v1.Resource("/batches/{batchName}/members/{memberId}").
		WithActions(
			box.Get(getMember),
		)

	return batches
}
