package catalog

import (
	"context"
	"log/slog"
)

var defaultProducts = []ProductInput{
	{Name: "Hot Wheels Turbo Racer", Price: "$9.99", Image: "https://via.placeholder.com/400x200?text=Turbo+Racer"},
	{Name: "Street Beast X", Price: "$8.49", Image: "https://via.placeholder.com/400x200?text=Street+Beast+X"},
	{Name: "Monster Jam Max-D", Price: "$12.99", Image: "https://via.placeholder.com/400x200?text=Monster+Truck"},
	{Name: "Hot Wheels Drift King", Price: "$10.99", Image: "https://via.placeholder.com/400x200?text=Drift+King"},
	{Name: "Hot Wheels Shark Cruiser", Price: "$11.49", Image: "https://via.placeholder.com/400x200?text=Shark+Cruiser"},
	{Name: "Cyber Speeder", Price: "$7.99", Image: "https://via.placeholder.com/400x200?text=Cyber+Speeder"},
}

// Seed fills an empty catalog with the launch line-up. It does nothing when
// any product exists.
func (r *Repository) Seed(ctx context.Context, logger *slog.Logger) error {
	existing, err := r.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, p := range defaultProducts {
		if _, err := r.Create(ctx, p); err != nil {
			return err
		}
	}
	logger.Info("catalog seeded", "products", len(defaultProducts))
	return nil
}
