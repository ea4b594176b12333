package gitlib

import (
	"strings"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// Signature identifies a commit author or committer.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Commit wraps a libgit2 commit.
type Commit struct {
	commit *git2go.Commit
	repo   *Repository
}

// Hash returns the commit hash.
func (c *Commit) Hash() Hash {
	return HashFromOid(c.commit.Id())
}

// Author returns the commit author.
func (c *Commit) Author() Signature {
	return signatureOf(c.commit.Author())
}

// Committer returns the commit committer.
func (c *Commit) Committer() Signature {
	return signatureOf(c.commit.Committer())
}

// Message returns the full commit message.
func (c *Commit) Message() string {
	return c.commit.Message()
}

// Summary returns the first line of the commit message.
func (c *Commit) Summary() string {
	msg := c.commit.Message()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}

	return strings.TrimSpace(msg)
}

// Tree returns the root tree of this commit.
func (c *Commit) Tree() (*Tree, error) {
	tree, err := c.commit.Tree()
	if err != nil {
		return nil, wrapErr("get commit tree", err)
	}

	return &Tree{tree: tree, repo: c.repo}, nil
}

// Free releases the commit resources.
func (c *Commit) Free() {
	if c.commit != nil {
		c.commit.Free()
		c.commit = nil
	}
}

func signatureOf(sig *git2go.Signature) Signature {
	if sig == nil {
		return Signature{}
	}

	return Signature{Name: sig.Name, Email: sig.Email, When: sig.When}
}
