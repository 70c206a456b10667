// pkg/catalog/store_test.go
package catalog

import (
	"fmt"
	"testing"

	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"shareable/pkg/types"
)

func TestStoreUpdate(t *testing.T) {
	re := require.New(t)
	core, logs := observer.New(zap.DebugLevel)
	s := NewStore(nil, WithLogger(zap.New(core)))
	commits := testutil.ToFloat64(commitCounter)

	v0 := s.Current()
	re.Equal(uint64(0), v0.Version())

	v1, err := s.Update(func(c *Catalog) (*Catalog, error) {
		return c.CreateTable(usersTable())
	})
	re.NoError(err)
	re.Equal(uint64(1), v1.Version())
	re.Same(v1, s.Current())
	re.Equal(0, v0.TableCount())
	re.Equal(commits+1, testutil.ToFloat64(commitCounter))
	re.Equal(1.0, testutil.ToFloat64(objectGauge.WithLabelValues("table")))
	re.Equal(1, logs.FilterMessage("catalog committed").Len())

	_, err = s.Update(func(c *Catalog) (*Catalog, error) {
		return c.CreateTable(usersTable())
	})
	re.ErrorIs(errors.Cause(err), ErrTableExists)
	re.Same(v1, s.Current())

	_, err = s.Update(func(*Catalog) (*Catalog, error) { return nil, nil })
	re.Error(err)
	re.Same(v1, s.Current())
	re.Equal(1, logs.FilterMessage("catalog update rejected").Len())
}

func TestStoreCompareAndSwap(t *testing.T) {
	re := require.New(t)
	s := NewStore(NewCatalog())
	conflicts := testutil.ToFloat64(conflictCounter)

	base := s.Current()
	a, err := base.CreateTable(&TableDef{Name: "a"})
	re.NoError(err)
	b, err := base.CreateTable(&TableDef{Name: "b"})
	re.NoError(err)

	re.True(s.CompareAndSwap(base, a))
	re.False(s.CompareAndSwap(base, b))
	re.Equal(conflicts+1, testutil.ToFloat64(conflictCounter))
	re.Equal([]string{"a"}, s.Current().Tables())
	re.Equal(uint64(1), s.Current().Version())

	cur := s.Current()
	b, err = cur.CreateTable(&TableDef{Name: "b"})
	re.NoError(err)
	re.True(s.CompareAndSwap(cur, b))
	re.Equal([]string{"a", "b"}, s.Current().Tables())
	re.Equal(uint64(2), s.Current().Version())

	cur = s.Current()
	re.False(s.CompareAndSwap(nil, b))
	re.False(s.CompareAndSwap(cur, nil))
	re.Same(cur, s.Current())
}

func TestStoreConcurrentWriters(t *testing.T) {
	re := require.New(t)
	c, err := NewCatalog().CreateTable(&TableDef{Name: "t", Columns: []ColumnDef{{Name: "id", Type: types.TypeInt}}})
	re.NoError(err)
	c, err = c.CreateIndex(IndexDef{Name: "t_id", TableName: "t", Columns: []string{"id"}, Unique: true})
	re.NoError(err)
	s := NewStore(c)

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < 50; i++ {
				row := int64(w*1000 + i)
				_, err := s.Update(func(c *Catalog) (*Catalog, error) {
					return c.InsertRow("t", row, []types.Value{types.NewInt(row)})
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
		g.Go(func() error {
			for i := 0; i < 50; i++ {
				snap := s.Current()
				rows, err := snap.Lookup("t_id")
				if err != nil {
					return err
				}
				if len(rows) != snap.Index("t_id").Len() {
					return fmt.Errorf("snapshot %d: %d rows, index holds %d", snap.Version(), len(rows), snap.Index("t_id").Len())
				}
			}
			return nil
		})
	}
	re.NoError(g.Wait())
	re.Equal(uint64(400), s.Current().Version())
	re.Equal(400, s.Current().Index("t_id").Len())
}
