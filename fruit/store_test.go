package fruit_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/muir/fruitstand/fruit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertThenGet(t *testing.T) {
	s := fruit.NewStore()
	apple := fruit.Fruit{Name: "Apple", Stock: 10}
	require.True(t, s.InsertIfAbsent("fapple", apple))
	got, ok := s.Get("fapple")
	require.True(t, ok)
	assert.Equal(t, apple, got)

	assert.False(t, s.InsertIfAbsent("fapple", fruit.Fruit{Name: "Other", Stock: -3}), "second insert")
	got, _ = s.Get("fapple")
	assert.Equal(t, apple, got, "unchanged by rejected insert")
	assert.Equal(t, 1, s.Len())
}

func TestUpsertLastWriteWins(t *testing.T) {
	s := fruit.NewStore()
	s.Upsert("fpear", fruit.Fruit{Name: "Pear", Stock: 1})
	s.Upsert("fpear", fruit.Fruit{Name: "Pear", Stock: 0})
	got, ok := s.Get("fpear")
	require.True(t, ok)
	assert.Equal(t, fruit.Fruit{Name: "Pear", Stock: 0}, got)
}

func TestRemove(t *testing.T) {
	s := fruit.NewStore()
	s.Upsert("fkiwi", fruit.Fruit{Name: "Kiwi"})
	s.Remove("fmissing")
	assert.Equal(t, map[string]fruit.Fruit{"fkiwi": {Name: "Kiwi"}}, s.List(), "absent remove changes nothing")
	s.Remove("fkiwi")
	_, ok := s.Get("fkiwi")
	assert.False(t, ok)
	s.Remove("fkiwi")
	assert.Equal(t, 0, s.Len())
}

func TestListIsSnapshot(t *testing.T) {
	s := fruit.NewStore()
	s.Upsert("fa", fruit.Fruit{Name: "A"})
	snap := s.List()
	snap["fb"] = fruit.Fruit{Name: "B"}
	s.Upsert("fc", fruit.Fruit{Name: "C"})
	assert.Len(t, snap, 2)
	assert.Equal(t, 2, s.Len())
	_, ok := s.Get("fb")
	assert.False(t, ok, "snapshot writes do not leak into the store")
}

func TestConcurrentInsertIfAbsent(t *testing.T) {
	const n = 64
	s := fruit.NewStore()
	var wg sync.WaitGroup
	var lock sync.Mutex
	var won, lost int
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok := s.InsertIfAbsent("fsame", fruit.Fruit{Name: fmt.Sprint(i), Stock: i})
			lock.Lock()
			defer lock.Unlock()
			if ok {
				won++
			} else {
				lost++
			}
		}()
	}
	close(start)
	wg.Wait()
	assert.Equal(t, 1, won)
	assert.Equal(t, n-1, lost)
}

func TestConcurrentMixedOperations(t *testing.T) {
	s := fruit.NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				id := fmt.Sprintf("f%d-%d", i, j%10)
				s.Upsert(id, fruit.Fruit{Name: id, Stock: j})
				s.InsertIfAbsent(id, fruit.Fruit{Name: id})
				s.Remove(id)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				for id, f := range s.List() {
					assert.Equal(t, id, f.Name)
				}
			}
		}()
	}
	wg.Wait()
}
