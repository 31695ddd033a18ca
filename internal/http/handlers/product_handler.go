package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "makershelf/internal/log"
	"makershelf/internal/services"
	"makershelf/internal/validate"
)

type ProductHandler struct {
	Catalog  *services.CatalogService
	Products *services.ProductService
}

// GET /products
func (h *ProductHandler) Index(c *fiber.Ctx) error {
	cr := services.ParseCriteria(c.Query("search"), c.Query("maker_id"), c.Query("page"))
	res, err := h.Catalog.List(cr)
	if err != nil {
		applog.Error(c, "product.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load products. Please retry."})
	}
	makers, err := h.Catalog.ListMakers()
	if err != nil {
		applog.Error(c, "maker.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load products. Please retry."})
	}

	return render(c, "index", fiber.Map{
		"Products": res.Items,
		"Total":    res.Total,
		"Page":     res.Page,
		"Offset":   res.Offset,
		"Makers":   makers,
		"Search":   cr.Search,
		"MakerID":  cr.MakerID,
		"HasPrev":  res.Page > 1,
		"HasNext":  res.Offset+len(res.Items) < res.Total,
		"PrevPage": res.Page - 1,
		"NextPage": res.Page + 1,
		"Deleted":  c.Query("deleted"),
	})
}

// GET /products/new
func (h *ProductHandler) New(c *fiber.Ctx) error {
	makers, err := h.Catalog.ListMakers()
	if err != nil {
		applog.Error(c, "maker.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the form. Please retry."})
	}
	return render(c, "new", fiber.Map{"Makers": makers, "Form": services.ProductInput{}})
}

// POST /products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return c.Redirect("/login")
	}

	in := productInput(c)
	up, err := formUpload(c)
	if err != nil {
		applog.Error(c, "product.upload.read.fail", err, nil)
		return h.createFailure(c, in, "Could not read the uploaded file. Please try again.")
	}
	in.Image = up

	fields, err := h.Products.Validate(in)
	var verrs services.ValidationErrors
	if errors.As(err, &verrs) {
		applog.Security(c, "validation.fail", map[string]any{"op": "create", "count": len(verrs)})
		makers, _ := h.Catalog.ListMakers()
		c.Status(fiber.StatusUnprocessableEntity)
		return render(c, "new", fiber.Map{"Makers": makers, "Form": in, "Errors": verrs})
	}
	if err != nil {
		applog.Error(c, "product.validate.fail", err, nil)
		return h.createFailure(c, in, "Could not save the product. Please try again.")
	}

	p, err := h.Products.Create(fields, u.ID, up)
	if err != nil {
		applog.Error(c, "product.create.fail", err, nil)
		return h.createFailure(c, in, "Could not save the product. Please try again.")
	}

	applog.Audit(c, "product.create", map[string]any{"product_id": p.ID})
	return c.Redirect("/products")
}

// GET /products/:id
func (h *ProductHandler) Show(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
	}
	p, err := h.Catalog.Get(id)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
	}
	if err != nil {
		applog.Error(c, "product.get.fail", err, map[string]any{"product_id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the product. Please retry."})
	}
	return render(c, "show", fiber.Map{"P": p, "Page": validate.Page(c.Query("page"))})
}

// GET /products/:id/edit
func (h *ProductHandler) Edit(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
	}
	p, err := h.Catalog.Get(id)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
	}
	if err != nil {
		applog.Error(c, "product.get.fail", err, map[string]any{"product_id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the product. Please retry."})
	}
	makers, err := h.Catalog.ListMakers()
	if err != nil {
		applog.Error(c, "maker.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load the form. Please retry."})
	}

	in := services.ProductInput{
		ProductName: p.ProductName,
		Price:       strconv.FormatInt(p.Price, 10),
		Stock:       strconv.FormatInt(p.Stock, 10),
		MakerID:     strconv.FormatInt(p.MakerID, 10),
		Detail:      p.Detail,
	}
	return render(c, "edit", fiber.Map{
		"ID": id, "Makers": makers, "Form": in, "Image": p.Image,
		"Updated": c.Query("updated") != "",
	})
}

// POST /products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return c.Redirect("/login")
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
	}

	in := productInput(c)
	up, err := formUpload(c)
	if err != nil {
		applog.Error(c, "product.upload.read.fail", err, map[string]any{"product_id": id})
		return h.editFailure(c, id, in, "Could not read the uploaded file. Please try again.")
	}
	in.Image = up

	fields, err := h.Products.Validate(in)
	var verrs services.ValidationErrors
	if errors.As(err, &verrs) {
		applog.Security(c, "validation.fail", map[string]any{"op": "update", "count": len(verrs)})
		makers, _ := h.Catalog.ListMakers()
		c.Status(fiber.StatusUnprocessableEntity)
		return render(c, "edit", fiber.Map{"ID": id, "Makers": makers, "Form": in, "Errors": verrs})
	}
	if err != nil {
		applog.Error(c, "product.validate.fail", err, map[string]any{"product_id": id})
		return h.editFailure(c, id, in, "Could not save the product. Please try again.")
	}

	if _, err := h.Products.Update(id, fields, u.ID, up); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
		}
		applog.Error(c, "product.update.fail", err, map[string]any{"product_id": id})
		return h.editFailure(c, id, in, "Could not save the product. Please try again.")
	}

	applog.Audit(c, "product.update", map[string]any{"product_id": id})
	return c.Redirect(fmt.Sprintf("/products/%d/edit?updated=1", id))
}

// POST /products/:id/delete
func (h *ProductHandler) Destroy(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
	}

	name, err := h.Products.Delete(id)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "This product is no longer available"})
	}
	if err != nil {
		applog.Error(c, "product.delete.fail", err, map[string]any{"product_id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not delete the product. Please retry."})
	}

	applog.Audit(c, "product.delete", map[string]any{"product_id": id, "name": name})
	return c.Redirect("/products?deleted=" + url.QueryEscape(name))
}

func (h *ProductHandler) createFailure(c *fiber.Ctx, in services.ProductInput, msg string) error {
	makers, _ := h.Catalog.ListMakers()
	c.Status(fiber.StatusInternalServerError)
	return render(c, "new", fiber.Map{"Makers": makers, "Form": in, "Failure": msg})
}

func (h *ProductHandler) editFailure(c *fiber.Ctx, id int64, in services.ProductInput, msg string) error {
	makers, _ := h.Catalog.ListMakers()
	c.Status(fiber.StatusInternalServerError)
	return render(c, "edit", fiber.Map{"ID": id, "Makers": makers, "Form": in, "Failure": msg})
}

func productInput(c *fiber.Ctx) services.ProductInput {
	return services.ProductInput{
		ProductName: c.FormValue("product_name"),
		Price:       c.FormValue("price"),
		Stock:       c.FormValue("stock"),
		MakerID:     c.FormValue("maker_id"),
		Detail:      c.FormValue("detail"),
	}
}

// formUpload reads the optional image part. A missing or empty part is
// "no file supplied", not an error.
func formUpload(c *fiber.Ctx) (*services.Upload, error) {
	fh, err := c.FormFile("image")
	if err != nil || fh == nil || fh.Filename == "" || fh.Size == 0 {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &services.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Data:        data,
	}, nil
}
