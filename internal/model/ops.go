package model

// CommentOp is the extracted shape of a comment operation (spec.md §4.C).
type CommentOp struct {
	Author         string
	Permlink       string
	ParentAuthor   string
	ParentPermlink string
	JSONMetadata   JSON
}

// DeleteCommentOp is the extracted shape of a delete_comment operation.
type DeleteCommentOp struct {
	Author   string
	Permlink string
}

// CustomJSONOp is the extracted shape of a custom_json operation.
type CustomJSONOp struct {
	ID                    string
	RequiredPostingAuths  []string
	RequiredActiveAuths   []string
	JSON                  JSON
}

// ParsedBlock is the output of the operation parser for a single block: the
// classified, field-extracted operations plus the accounts to register and
// the dirty set touched by comments and votes (spec.md §4.C, §4.D step 2).
type ParsedBlock struct {
	NewAccounts    []string
	Comments       []CommentOp
	DeleteComments []DeleteCommentOp
	CustomJSONs    []CustomJSONOp
	Dirty          DirtySet
}
