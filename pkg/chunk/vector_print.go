package chunk

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
	"go.uber.org/zap"

	"github.com/daviszhen/vec/pkg/common"
	"github.com/daviszhen/vec/pkg/util"
)

const treeMaxRows = 8

func (vec *Vector) Print(rowCount int) {
	for j := 0; j < rowCount; j++ {
		val := vec.GetValue(j)
		fmt.Println(val)
	}
	fmt.Println()
}

func (vec *Vector) Print2(prefix string, rowCount int) {
	fields := make([]zap.Field, 0)
	for j := 0; j < rowCount; j++ {
		val := vec.GetValue(j)
		fields = append(fields, zap.String("", val.String()))
	}
	util.Info(prefix, fields...)
}

func (vec *Vector) header() string {
	return fmt.Sprintf("%v %v", vec.PhyFormat(), vec.Typ())
}

// Tree renders the encoding of vec: dictionaries with their child,
// struct fields and the first rows.
func (vec *Vector) Tree(count int) treeprint.Tree {
	tree := treeprint.NewWithRoot(vec.header())
	vec.addToTree(tree, count)
	return tree
}

func (vec *Vector) addToTree(tree treeprint.Tree, count int) {
	switch vec.PhyFormat() {
	case PF_DICT:
		sel := GetSelVectorInPhyFormatDict(vec)
		idxs := make([]string, 0, treeMaxRows)
		for i := 0; i < min(count, treeMaxRows); i++ {
			idxs = append(idxs, fmt.Sprint(sel.GetIndex(i)))
		}
		tree.AddMetaNode("sel", "["+strings.Join(idxs, ",")+"]")
		child := GetChildInPhyFormatDict(vec)
		branch := tree.AddMetaBranch("child", child.header())
		child.addToTree(branch, sel.MaxIndex(count))
		return
	case PF_SEQUENCE:
		var start, incr, seqCount int64
		GetSequenceInPhyFormatSequence(vec, &start, &incr, &seqCount)
		tree.AddMetaNode("start", start)
		tree.AddMetaNode("increment", incr)
		tree.AddMetaNode("count", seqCount)
		return
	case PF_CONST:
		count = min(count, 1)
	}
	if vec.Typ().Id == common.LTID_STRUCT && vec.Aux != nil && vec.Aux.BufTyp == VBT_STRUCT {
		for i, child := range vec.Aux.Children {
			branch := tree.AddMetaBranch(vec.Typ().ChildNames[i], child.header())
			child.addToTree(branch, count)
		}
		return
	}
	tree.AddMetaNode("valid", vec.Mask.CountValid(count))
	for i := 0; i < min(count, treeMaxRows); i++ {
		tree.AddMetaNode(i, vec.GetValue(i).String())
	}
	if count > treeMaxRows {
		tree.AddNode("...")
	}
}

func (c *Chunk) Tree() treeprint.Tree {
	tree := treeprint.NewWithRoot(fmt.Sprintf("chunk card=%d cap=%d", c.Card(), c.Cap()))
	for i, vec := range c.Data {
		branch := tree.AddMetaBranch(i, vec.header())
		vec.addToTree(branch, c.Card())
	}
	return tree
}
