// internal/services/registry.go
package services

import (
	"fmt"
	"sync"
)

const (
	ItemServiceName       = "item_service"
	PhotoServiceName      = "photo_service"
	ColorServiceName      = "color_service"
	SizeServiceName       = "size_service"
	CollectionServiceName = "collection_service"
	ItemFKAPIServiceName  = "item_fkapi_service"
	UserServiceName       = "user_service"
)

// Factory builds a service, resolving its collaborators through r so that
// substitutes registered on r are picked up.
type Factory func(r *Registry) (interface{}, error)

// Registry maps service names to instances or factories. Registered instances
// take precedence over factories. Factory results are not cached.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]interface{}
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		instances: make(map[string]interface{}),
		factories: make(map[string]Factory),
	}
}

// NewDefaultRegistry binds the production implementations built from deps.
func NewDefaultRegistry(deps *Dependencies) *Registry {
	r := NewRegistry()
	r.RegisterFactory(ItemServiceName, func(*Registry) (interface{}, error) {
		return NewItemService(deps), nil
	})
	r.RegisterFactory(PhotoServiceName, func(*Registry) (interface{}, error) {
		return NewPhotoService(deps), nil
	})
	r.RegisterFactory(ColorServiceName, func(*Registry) (interface{}, error) {
		return NewColorService(deps), nil
	})
	r.RegisterFactory(SizeServiceName, func(*Registry) (interface{}, error) {
		return NewSizeService(deps), nil
	})
	r.RegisterFactory(UserServiceName, func(*Registry) (interface{}, error) {
		return NewUserService(deps), nil
	})
	r.RegisterFactory(CollectionServiceName, func(r *Registry) (interface{}, error) {
		items, err := r.ItemService()
		if err != nil {
			return nil, err
		}
		photos, err := r.PhotoService()
		if err != nil {
			return nil, err
		}
		colors, err := r.ColorService()
		if err != nil {
			return nil, err
		}
		sizes, err := r.SizeService()
		if err != nil {
			return nil, err
		}
		return NewCollectionService(deps.DB, items, photos, colors, sizes), nil
	})
	r.RegisterFactory(ItemFKAPIServiceName, func(r *Registry) (interface{}, error) {
		items, err := r.ItemService()
		if err != nil {
			return nil, err
		}
		photos, err := r.PhotoService()
		if err != nil {
			return nil, err
		}
		return NewItemFKAPIService(deps, items, photos), nil
	})
	return r
}

// Register binds name to a ready instance, replacing any earlier binding.
func (r *Registry) Register(name string, service interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[name] = service
}

func (r *Registry) RegisterFactory(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Unregister drops both the instance and the factory bound to name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, name)
	delete(r.factories, name)
}

func (r *Registry) Get(name string) (interface{}, error) {
	r.mu.RLock()
	instance, ok := r.instances[name]
	factory := r.factories[name]
	r.mu.RUnlock()

	if ok {
		return instance, nil
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotRegistered, name)
	}
	return factory(r)
}

func get[T any](r *Registry, name string) (T, error) {
	var zero T
	v, err := r.Get(name)
	if err != nil {
		return zero, err
	}
	service, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("service %s has unexpected type %T", name, v)
	}
	return service, nil
}

func (r *Registry) ItemService() (ItemService, error) {
	return get[ItemService](r, ItemServiceName)
}

func (r *Registry) PhotoService() (PhotoService, error) {
	return get[PhotoService](r, PhotoServiceName)
}

func (r *Registry) ColorService() (ColorService, error) {
	return get[ColorService](r, ColorServiceName)
}

func (r *Registry) SizeService() (SizeService, error) {
	return get[SizeService](r, SizeServiceName)
}

func (r *Registry) CollectionService() (CollectionService, error) {
	return get[CollectionService](r, CollectionServiceName)
}

func (r *Registry) ItemFKAPIService() (ItemFKAPIService, error) {
	return get[ItemFKAPIService](r, ItemFKAPIServiceName)
}

func (r *Registry) UserService() (*UserService, error) {
	return get[*UserService](r, UserServiceName)
}
