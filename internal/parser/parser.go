// Package parser classifies raw block operations and extracts the fields
// the projector needs, tolerating malformed payloads rather than failing
// the surrounding block (spec.md §4.C).
package parser

import (
	"github.com/hiveio/hive-indexer/internal/model"
)

// ParseBlock classifies every operation across every transaction in b and
// returns the extracted shapes the projector consumes. Unknown op types are
// ignored; malformed json_metadata/custom_json bodies degrade to an empty
// model.JSON rather than aborting the containing operation.
func ParseBlock(b *model.Block) model.ParsedBlock {
	out := model.ParsedBlock{Dirty: model.NewDirtySet()}
	for _, tx := range b.Transactions {
		for _, op := range tx.Operations {
			parseOp(&out, op)
		}
	}
	return out
}

func parseOp(out *model.ParsedBlock, op model.Operation) {
	body := model.ParseJSON(op.Body)

	switch op.Type {
	case "pow":
		if name := body.String("worker_account"); name != "" {
			out.NewAccounts = append(out.NewAccounts, name)
		}

	case "pow2":
		if name := body.String("work.1.input.worker_account"); name != "" {
			out.NewAccounts = append(out.NewAccounts, name)
		}

	case "account_create", "account_create_with_delegation":
		if name := body.String("new_account_name"); name != "" {
			out.NewAccounts = append(out.NewAccounts, name)
		}

	case "comment":
		author := body.String("author")
		permlink := body.String("permlink")
		if author == "" || permlink == "" {
			return
		}
		out.Comments = append(out.Comments, model.CommentOp{
			Author:         author,
			Permlink:       permlink,
			ParentAuthor:   body.String("parent_author"),
			ParentPermlink: body.String("parent_permlink"),
			JSONMetadata:   model.ParseJSON(body.String("json_metadata")),
		})
		out.Dirty.Add(model.PostKey{Author: author, Permlink: permlink})

	case "delete_comment":
		author := body.String("author")
		permlink := body.String("permlink")
		if author == "" || permlink == "" {
			return
		}
		out.DeleteComments = append(out.DeleteComments, model.DeleteCommentOp{Author: author, Permlink: permlink})

	case "vote":
		author := body.String("author")
		permlink := body.String("permlink")
		if author == "" || permlink == "" {
			return
		}
		out.Dirty.Add(model.PostKey{Author: author, Permlink: permlink})

	case "custom_json":
		id := body.String("id")
		if id == "" {
			return
		}
		var postingAuths, activeAuths []string
		for _, a := range body.Array("required_posting_auths") {
			postingAuths = append(postingAuths, a.String())
		}
		for _, a := range body.Array("required_active_auths") {
			activeAuths = append(activeAuths, a.String())
		}
		out.CustomJSONs = append(out.CustomJSONs, model.CustomJSONOp{
			ID:                   id,
			RequiredPostingAuths: postingAuths,
			RequiredActiveAuths:  activeAuths,
			JSON:                 model.ParseJSON(body.String("json")),
		})
	}
}
