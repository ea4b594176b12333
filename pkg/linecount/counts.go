// Package linecount classifies source lines as code, comment, blank or mixed.
package linecount

import (
	"errors"
	"fmt"
)

// ErrUnknownClass is returned when decoding an unrecognized class name.
var ErrUnknownClass = errors.New("unknown line class")

// Class is the classification of a single line.
type Class uint8

// Line classes.
const (
	Blank Class = iota
	Code
	Comment
	// Mixed lines carry both code and comment content.
	Mixed
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case Blank:
		return "blank"
	case Code:
		return "code"
	case Comment:
		return "comment"
	case Mixed:
		return "mixed"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// MarshalText encodes the class by name.
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a class name produced by MarshalText.
func (c *Class) UnmarshalText(text []byte) error {
	for _, candidate := range []Class{Blank, Code, Comment, Mixed} {
		if candidate.String() == string(text) {
			*c = candidate

			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownClass, text)
}

// LineRecord is the classification of one line. Number is 1-based.
type LineRecord struct {
	Number int   `json:"line"`
	Class  Class `json:"class"`
}

// Counts keeps the raw per-class tallies and the published totals derived
// from them. Mixed lines count toward both Code and Comments but only once
// toward Total.
type Counts struct {
	Code     int `json:"code"     yaml:"code"`
	Comments int `json:"comments" yaml:"comments"`
	Blank    int `json:"blank"    yaml:"blank"`
	Total    int `json:"total"    yaml:"total"`

	CodeOnly    int `json:"code_only"    yaml:"code_only"`
	CommentOnly int `json:"comment_only" yaml:"comment_only"`
	Mixed       int `json:"mixed"        yaml:"mixed"`
}

// Add tallies one line of the given class.
func (c *Counts) Add(class Class) {
	switch class {
	case Blank:
		c.Blank++
	case Code:
		c.CodeOnly++
		c.Code++
	case Comment:
		c.CommentOnly++
		c.Comments++
	case Mixed:
		c.Mixed++
		c.Code++
		c.Comments++
	}

	c.Total++
}

// Plus returns the field-wise sum of c and o.
func (c Counts) Plus(o Counts) Counts {
	return Counts{
		Code:        c.Code + o.Code,
		Comments:    c.Comments + o.Comments,
		Blank:       c.Blank + o.Blank,
		Total:       c.Total + o.Total,
		CodeOnly:    c.CodeOnly + o.CodeOnly,
		CommentOnly: c.CommentOnly + o.CommentOnly,
		Mixed:       c.Mixed + o.Mixed,
	}
}

// Consistent reports whether the published totals agree with the raw tallies.
func (c Counts) Consistent() bool {
	return c.Total == c.Blank+c.CodeOnly+c.CommentOnly+c.Mixed &&
		c.Code == c.CodeOnly+c.Mixed &&
		c.Comments == c.CommentOnly+c.Mixed
}
